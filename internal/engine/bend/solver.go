package bend

import (
	"math"

	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

// Solver moves a joint chain toward the curled shape for a turn progress.
type Solver struct {
	params Params
}

// NewSolver creates a solver, rejecting invalid params.
func NewSolver(p Params) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Solver{params: p}, nil
}

// Params returns the active tunables.
func (s *Solver) Params() Params {
	return s.params
}

// SetParams swaps the tunables. Invalid params are rejected and the old
// ones kept.
func (s *Solver) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// Target returns the target angle of joint j in a chain of n joints at
// progress t.
func (s *Solver) Target(j, n int, t float64) float64 {
	p := &s.params
	full := p.FullTurnAngle

	if p.Curve == CurveSine {
		if j != 0 {
			return 0
		}
		return full * math.Sin(t*math.Pi/2)
	}

	split := p.InsideJoints
	if split == 0 {
		split = n / 2
	}

	var inside, outside float64
	if j < split {
		inside = math.Sin(float64(j)*0.2 + 0.25)
	} else {
		outside = math.Cos(float64(j)*0.3 + 0.09)
	}
	turn := math.Sin(float64(j)/float64(n)*math.Pi) * t

	return p.InsideStrength*inside*full -
		p.OutsideStrength*outside*full +
		p.TurnStrength*turn*full
}

// Ease moves current toward target by the easing fraction.
func (s *Solver) Ease(current, target float64) float64 {
	return current + (target-current)*s.params.Easing
}

// Apply runs one tick over every joint of c at progress t.
func (s *Solver) Apply(c *skeleton.Chain, t float64) {
	n := c.Len()
	for j := 0; j < n; j++ {
		c.SetRotation(j, s.Ease(c.Rotation(j), s.Target(j, n, t)))
	}
}
