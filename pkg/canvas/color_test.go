package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"red", RGB(255, 0, 0)},
		{"  Navy ", RGB(0, 0, 128)},
		{"#fff", White},
		{"#0008", RGBA(0, 0, 0, 0x88)},
		{"#1a2B3c", RGB(0x1a, 0x2b, 0x3c)},
		{"1a2b3c80", RGBA(0x1a, 0x2b, 0x3c, 0x80)},
		{"rgb(1, 2, 3)", RGB(1, 2, 3)},
		{"rgba(1,2,3,128)", RGBA(1, 2, 3, 128)},
		{"rgba(1,2,3,1.0)", RGBA(1, 2, 3, 255)},
		{"transparent", Transparent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColorErrors(t *testing.T) {
	for _, in := range []string{"", "chartreuse-ish", "#12345", "rgb(1,2)", "rgb(1,2,300)", "rgba(1,2,3,x)"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			assert.Error(t, err)
		})
	}
}

func TestToHex(t *testing.T) {
	assert.Equal(t, "#FF0000", ToHex(RGB(255, 0, 0)))
	assert.Equal(t, "#00000080", ToHex(RGBA(0, 0, 0, 128)))
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "#FFFFFF", Solid(White).String())
}

func TestMustParseColorPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseColor("nope") })
	assert.Equal(t, Black, MustParseColor("black"))
}
