package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a non-premultiplied 8-bit RGBA color.
type Color = color.NRGBA

// Paint is either a solid Color or the disabled sentinel None.
// The zero value is None, which no call to Solid can produce.
type Paint struct {
	c  Color
	on bool
}

// None disables the fill or stroke component of subsequent shapes.
var None = Paint{}

// Solid returns a Paint that draws with c.
func Solid(c Color) Paint {
	return Paint{c: c, on: true}
}

// Enabled reports whether p draws anything.
func (p Paint) Enabled() bool {
	return p.on
}

// Color returns the paint color and whether the paint is enabled.
func (p Paint) Color() (Color, bool) {
	return p.c, p.on
}

// String returns "none" or the hex form of the color.
func (p Paint) String() string {
	if !p.on {
		return "none"
	}
	return ToHex(p.c)
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Gray returns an opaque gray level.
func Gray(v uint8) Color {
	return Color{R: v, G: v, B: v, A: 255}
}

// Common colors.
var (
	Black       = Gray(0)
	White       = Gray(255)
	Transparent = Color{}
)

// namedColors holds the color names accepted by ParseColor.
var namedColors = map[string]Color{
	"black":       Black,
	"white":       White,
	"red":         RGB(255, 0, 0),
	"green":       RGB(0, 128, 0),
	"blue":        RGB(0, 0, 255),
	"yellow":      RGB(255, 255, 0),
	"cyan":        RGB(0, 255, 255),
	"magenta":     RGB(255, 0, 255),
	"gray":        Gray(128),
	"grey":        Gray(128),
	"silver":      Gray(192),
	"orange":      RGB(255, 165, 0),
	"purple":      RGB(128, 0, 128),
	"pink":        RGB(255, 192, 203),
	"navy":        RGB(0, 0, 128),
	"teal":        RGB(0, 128, 128),
	"lime":        RGB(0, 255, 0),
	"transparent": Transparent,
}

// ParseColor parses a color string.
// Supported formats:
//   - Named colors: "red", "navy", "transparent", ...
//   - Hex: "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA" (the # is optional)
//   - Functions: "rgb(255, 0, 0)", "rgba(255, 0, 0, 0.5)" or "rgba(255, 0, 0, 128)"
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color string")
	}
	lower := strings.ToLower(s)
	if c, ok := namedColors[lower]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(lower, "rgba("):
		return parseColorFunc(s, "rgba(", 4)
	case strings.HasPrefix(lower, "rgb("):
		return parseColorFunc(s, "rgb(", 3)
	case strings.HasPrefix(s, "#") || isHexString(s):
		return parseHexColor(strings.TrimPrefix(s, "#"))
	}
	return Color{}, fmt.Errorf("unrecognized color format: %q", s)
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ToHex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func ToHex(c Color) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func isHexString(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func parseHexColor(s string) (Color, error) {
	var digits []string
	switch len(s) {
	case 3, 4:
		// Shorthand: each digit is doubled.
		for i := 0; i < len(s); i++ {
			digits = append(digits, s[i:i+1]+s[i:i+1])
		}
	case 6, 8:
		for i := 0; i < len(s); i += 2 {
			digits = append(digits, s[i:i+2])
		}
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %d", len(s))
	}

	out := [4]uint8{0, 0, 0, 255}
	names := [4]string{"red", "green", "blue", "alpha"}
	for i, d := range digits {
		v, err := strconv.ParseUint(d, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid %s component: %w", names[i], err)
		}
		out[i] = uint8(v)
	}
	return Color{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

func parseColorFunc(s, prefix string, n int) (Color, error) {
	if !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("invalid %s) format: %q", prefix, s)
	}
	parts := strings.Split(s[len(prefix):len(s)-1], ",")
	if len(parts) != n {
		return Color{}, fmt.Errorf("%s) requires exactly %d values, got %d", prefix, n, len(parts))
	}

	out := [4]uint8{0, 0, 0, 255}
	names := [4]string{"red", "green", "blue", "alpha"}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		var (
			v   uint8
			err error
		)
		if i == 3 {
			v, err = parseAlpha(p)
		} else {
			var u uint64
			u, err = strconv.ParseUint(p, 10, 8)
			v = uint8(u)
		}
		if err != nil {
			return Color{}, fmt.Errorf("invalid %s value: %w", names[i], err)
		}
		out[i] = v
	}
	return Color{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

// parseAlpha accepts 0-255 integers and 0.0-1.0 floats.
func parseAlpha(s string) (uint8, error) {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		f = min(max(f, 0), 1)
		return uint8(f * 255), nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
