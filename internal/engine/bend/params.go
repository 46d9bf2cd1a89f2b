// Package bend computes the joint rotations that curl a page as it turns.
package bend

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidParams is returned for tunables the solver cannot run with.
var ErrInvalidParams = errors.New("bend: invalid params")

// Curve selects how a joint's target angle is shaped.
type Curve int

const (
	// CurveBlend mixes an inside curl near the spine, an outside curl
	// near the free edge and a progress-scaled bump across the chain.
	CurveBlend Curve = iota
	// CurveSine swings the page rigidly about the spine by
	// FullTurnAngle*sin(t*pi/2); every other joint relaxes to flat.
	CurveSine
)

func (c Curve) String() string {
	switch c {
	case CurveBlend:
		return "blend"
	case CurveSine:
		return "sine"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

// ParseCurve converts a config name to a Curve.
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "", "blend":
		return CurveBlend, nil
	case "sine":
		return CurveSine, nil
	}
	return 0, fmt.Errorf("%w: unknown curve %q", ErrInvalidParams, name)
}

// MinStep is the smallest progress step a turn may use.
const MinStep = 1e-6

// Params are the bend tunables.
type Params struct {
	// Easing is the fraction of the remaining distance to the target a
	// joint covers each tick.
	Easing float64
	// InsideStrength, OutsideStrength and TurnStrength weight the three
	// terms of the blend curve.
	InsideStrength  float64
	OutsideStrength float64
	TurnStrength    float64
	// FullTurnAngle is the signed angle of a complete turn, in radians.
	FullTurnAngle float64
	Curve         Curve
	// Step is the progress added per tick.
	Step float64
	// InsideJoints is how many joints from the spine get the inside term.
	// Zero splits the chain in half.
	InsideJoints int
}

// Validate reports why p cannot drive a turn, wrapping ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case !(p.Easing > 0 && p.Easing <= 1):
		return fmt.Errorf("%w: easing must be in (0,1], got %v", ErrInvalidParams, p.Easing)
	case !(p.Step >= MinStep) || math.IsInf(p.Step, 1):
		return fmt.Errorf("%w: step must be finite and at least %v, got %v", ErrInvalidParams, MinStep, p.Step)
	case p.InsideJoints < 0:
		return fmt.Errorf("%w: inside joints must not be negative, got %d", ErrInvalidParams, p.InsideJoints)
	case math.IsNaN(p.FullTurnAngle) || math.IsInf(p.FullTurnAngle, 0):
		return fmt.Errorf("%w: full turn angle must be finite", ErrInvalidParams)
	case p.Curve != CurveBlend && p.Curve != CurveSine:
		return fmt.Errorf("%w: unknown curve %v", ErrInvalidParams, p.Curve)
	}
	return nil
}

// Ticks returns how many ticks a turn takes from 0 to 1.
func (p Params) Ticks() int {
	return int(math.Ceil(1/p.Step - 1e-9))
}

// Curl is the default page curl.
func Curl() Params {
	return Params{
		Easing:          0.5,
		InsideStrength:  0.18,
		OutsideStrength: 0.05,
		TurnStrength:    0.09,
		FullTurnAngle:   -math.Pi / 2,
		Curve:           CurveBlend,
		Step:            0.02,
		InsideJoints:    8,
	}
}

// Gentle is Curl turned more slowly.
func Gentle() Params {
	p := Curl()
	p.Step = 0.015
	return p
}

// Flip swings the page over as a stiff sheet through a half turn.
func Flip() Params {
	return Params{
		Easing:        0.15,
		FullTurnAngle: -math.Pi,
		Curve:         CurveSine,
		Step:          0.015,
	}
}

var presets = map[string]func() Params{
	"curl":   Curl,
	"gentle": Gentle,
	"flip":   Flip,
}

// Preset returns the named parameter set.
func Preset(name string) (Params, error) {
	fn, ok := presets[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalidParams, name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
