package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderOrderAndReset(t *testing.T) {
	r := NewRecorder(4)
	r.Record(Background{Color: Black})
	r.Record(Line{P2: Point{X: 1}})
	r.Record(PointCmd{})

	kinds := make([]Kind, 0, r.Len())
	for _, c := range r.Commands() {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []Kind{KindBackground, KindLine, KindPoint}, kinds)

	r.Reset()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Commands())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ellipse", KindEllipse.String())
	assert.Equal(t, "quad", KindQuad.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
