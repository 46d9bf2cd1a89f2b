// Package lighting describes the lights the book is lit with.
package lighting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/castle-book/pkg/math"
)

// Directional is a light at infinity shining from Position toward Target.
type Directional struct {
	Color     [3]float32
	Intensity float32
	Position  math.Vec3
	Target    math.Vec3

	CastShadows bool
	// ShadowBias offsets depth comparisons to avoid acne.
	ShadowBias float32
}

// Direction returns the normalized direction the light travels in.
func (d Directional) Direction() [3]float32 {
	return d.Target.Sub(d.Position).Normalize().Array()
}

// Radiance returns color * intensity.
func (d Directional) Radiance() [3]float32 {
	return scale(d.Color, d.Intensity)
}

// Ambient is a uniform fill light.
type Ambient struct {
	Color     [3]float32
	Intensity float32
}

// Radiance returns color * intensity.
func (a Ambient) Radiance() [3]float32 {
	return scale(a.Color, a.Intensity)
}

// Rig is the full lighting setup of a scene.
type Rig struct {
	Sun     Directional
	Ambient Ambient
}

// DefaultRig is a white sun at (2,4,2) over a dim grey fill.
func DefaultRig() Rig {
	return Rig{
		Sun: Directional{
			Color:       HexColor(0xffffff),
			Intensity:   2,
			Position:    math.V3(2, 4, 2),
			CastShadows: true,
			ShadowBias:  -0.001,
		},
		Ambient: Ambient{
			Color:     HexColor(0x404040),
			Intensity: 1,
		},
	}
}

// HexColor converts 0xRRGGBB to linear-ish 0..1 components.
func HexColor(rgb uint32) [3]float32 {
	return [3]float32{
		float32(rgb>>16&0xff) / 255,
		float32(rgb>>8&0xff) / 255,
		float32(rgb&0xff) / 255,
	}
}

// ParseHex parses "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseHex(s string) ([3]float32, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(h) != 6 {
		return [3]float32{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return HexColor(uint32(v)), nil
}

func scale(c [3]float32, k float32) [3]float32 {
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}
