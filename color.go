package flowarc

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1]. Colors are not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	r, g, b, a := c.Unorm8()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Unorm8 returns the color as four 8-bit normalized channels, the layout of
// a Unorm8x4 vertex attribute. Alpha is scaled to 0-255 like the others.
func (c RGBA) Unorm8() (r, g, b, a uint8) {
	return unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// RGBA8 creates a color from 0-255 channel values.
func RGBA8(r, g, b, a uint8) RGBA {
	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without '#'.
// Unrecognized input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)

	switch len(hex) {
	case 3:
		r, g, b = parseHex(hex[0:1])*17, parseHex(hex[1:2])*17, parseHex(hex[2:3])*17
	case 4:
		r, g, b = parseHex(hex[0:1])*17, parseHex(hex[1:2])*17, parseHex(hex[2:3])*17
		a = parseHex(hex[3:4]) * 17
	case 6:
		r, g, b = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6])
	case 8:
		r, g, b = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6])
		a = parseHex(hex[6:8])
	default:
		return Black
	}

	return RGBA8(uint8(r), uint8(g), uint8(b), uint8(a))
}

// ParseHex is Hex with validation: malformed input returns ErrInvalidHex
// instead of black.
func ParseHex(s string) (RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return Black, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	if strings.TrimLeft(h, "0123456789abcdefABCDEF") != "" {
		return Black, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Hex(h), nil
}

// Hex formats the color as "#rrggbbaa".
func (c RGBA) Hex() string {
	r, g, b, a := c.Unorm8()
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// parseHex parses up to two hex digits, stopping at the first invalid one.
func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v *= 16
		switch {
		case '0' <= c && c <= '9':
			v += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			v += uint32(c - 'A' + 10)
		default:
			return v / 16
		}
	}
	return v
}

// Lerp performs linear interpolation between two colors.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// blend mixes c and other with weights v and u (u+v = 1), keeping every
// channel inside the interval spanned by the two inputs.
func (c RGBA) blend(other RGBA, u, v float64) RGBA {
	return RGBA{
		R: mixChannel(c.R, other.R, u, v),
		G: mixChannel(c.G, other.G, u, v),
		B: mixChannel(c.B, other.B, u, v),
		A: mixChannel(c.A, other.A, u, v),
	}
}

func mixChannel(a, b, u, v float64) float64 {
	x := a*v + b*u
	lo, hi := math.Min(a, b), math.Max(a, b)
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func unorm8(x float64) uint8 {
	return uint8(math.Round(clamp255(x * 255)))
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)

// Default arc ramp: a faint orange at the origin fading into opaque cyan at
// the destination.
var (
	DefaultStartColor = RGBA{R: 252.0 / 255, G: 144.0 / 255, B: 3.0 / 255, A: 0.1}
	DefaultEndColor   = RGBA{R: 3.0 / 255, G: 215.0 / 255, B: 252.0 / 255, A: 1}
)
