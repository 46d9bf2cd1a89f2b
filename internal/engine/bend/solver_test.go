package bend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

const joints = 31

func newChain(t *testing.T) *skeleton.Chain {
	t.Helper()
	c, err := skeleton.NewChain(joints, 1.28/30)
	require.NoError(t, err)
	return c
}

func newSolver(t *testing.T, p Params) *Solver {
	t.Helper()
	s, err := NewSolver(p)
	require.NoError(t, err)
	return s
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr bool
	}{
		{"curl", func(p *Params) {}, false},
		{"easing one", func(p *Params) { p.Easing = 1 }, false},
		{"easing zero", func(p *Params) { p.Easing = 0 }, true},
		{"easing above one", func(p *Params) { p.Easing = 1.5 }, true},
		{"easing NaN", func(p *Params) { p.Easing = math.NaN() }, true},
		{"step zero", func(p *Params) { p.Step = 0 }, true},
		{"step negative", func(p *Params) { p.Step = -0.02 }, true},
		{"step below minimum", func(p *Params) { p.Step = 1e-12 }, true},
		{"step at minimum", func(p *Params) { p.Step = MinStep }, false},
		{"step infinite", func(p *Params) { p.Step = math.Inf(1) }, true},
		{"inside joints negative", func(p *Params) { p.InsideJoints = -1 }, true},
		{"angle infinite", func(p *Params) { p.FullTurnAngle = math.Inf(-1) }, true},
		{"unknown curve", func(p *Params) { p.Curve = Curve(9) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Curl()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, p.Validate(), name)
	}
	assert.Equal(t, []string{"curl", "flip", "gentle"}, PresetNames())

	curl, err := Preset("curl")
	require.NoError(t, err)
	assert.Equal(t, 0.5, curl.Easing)
	assert.Equal(t, 0.18, curl.InsideStrength)
	assert.Equal(t, 0.05, curl.OutsideStrength)
	assert.Equal(t, 0.09, curl.TurnStrength)
	assert.Equal(t, -math.Pi/2, curl.FullTurnAngle)
	assert.Equal(t, 0.02, curl.Step)
	assert.Equal(t, 50, curl.Ticks())

	assert.Equal(t, 0.015, Gentle().Step)
	assert.Equal(t, 67, Flip().Ticks())

	_, err = Preset("origami")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParseCurve(t *testing.T) {
	c, err := ParseCurve("sine")
	require.NoError(t, err)
	assert.Equal(t, CurveSine, c)

	c, err = ParseCurve("")
	require.NoError(t, err)
	assert.Equal(t, CurveBlend, c)

	_, err = ParseCurve("wave")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestTurnTermVanishesAtStart(t *testing.T) {
	p := Curl()
	p.InsideStrength, p.OutsideStrength = 0, 0
	s := newSolver(t, p)

	for j := 0; j < joints; j++ {
		assert.Equal(t, 0.0, s.Target(j, joints, 0), "joint %d", j)
	}

	// With the curl terms back, t=0 leaves only them.
	curl := newSolver(t, Curl())
	noTurn := Curl()
	noTurn.TurnStrength = 0
	static := newSolver(t, noTurn)
	for j := 0; j < joints; j++ {
		assert.Equal(t, static.Target(j, joints, 0.7), curl.Target(j, joints, 0), "joint %d", j)
	}
}

func TestTargetTerms(t *testing.T) {
	s := newSolver(t, Curl())
	full := -math.Pi / 2

	// Joint 0 is inside the curl.
	want := 0.18 * math.Sin(0.25) * full
	assert.InDelta(t, want, s.Target(0, joints, 0), 1e-12)

	// Joint 8 is the first outside joint.
	turn := math.Sin(8.0/joints*math.Pi) * 0.5
	want = -0.05*math.Cos(8*0.3+0.09)*full + 0.09*turn*full
	assert.InDelta(t, want, s.Target(8, joints, 0.5), 1e-12)
}

func TestInsideJointsDefaultsToHalf(t *testing.T) {
	p := Curl()
	p.InsideJoints = 0
	p.TurnStrength = 0
	p.OutsideStrength = 0
	s := newSolver(t, p)

	assert.NotZero(t, s.Target(14, joints, 0))
	assert.Zero(t, s.Target(15, joints, 0))
}

func TestFirstTickFromRest(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p, err := Preset(name)
			require.NoError(t, err)
			s := newSolver(t, p)
			c := newChain(t)

			s.Apply(c, p.Step)
			for j := 0; j < joints; j++ {
				want := s.Target(j, joints, p.Step) * p.Easing
				assert.Equal(t, want, c.Rotation(j), "joint %d", j)
			}
		})
	}
}

func TestConvergesWithoutOvershoot(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p, err := Preset(name)
			require.NoError(t, err)
			s := newSolver(t, p)
			c := newChain(t)

			const progress = 0.6
			prev := make([]float64, joints)
			for j := range prev {
				prev[j] = math.Abs(s.Target(j, joints, progress) - c.Rotation(j))
			}

			for tick := 0; tick < 500; tick++ {
				s.Apply(c, progress)
				for j := 0; j < joints; j++ {
					target := s.Target(j, joints, progress)
					gap := math.Abs(target - c.Rotation(j))
					if prev[j] > 1e-12 {
						assert.Less(t, gap, prev[j], "tick %d joint %d", tick, j)
					}
					// Rotation stays on the starting side of the target.
					if target < 0 {
						assert.GreaterOrEqual(t, c.Rotation(j), target)
					} else {
						assert.LessOrEqual(t, c.Rotation(j), target)
					}
					prev[j] = gap
				}
			}
			for j := 0; j < joints; j++ {
				assert.InDelta(t, s.Target(j, joints, progress), c.Rotation(j), 1e-9)
			}
		})
	}
}

func TestIdempotentAtEnd(t *testing.T) {
	s := newSolver(t, Curl())
	c := newChain(t)
	for j := 0; j < joints; j++ {
		c.SetRotation(j, s.Target(j, joints, 1))
	}
	before := c.Rotations()

	s.Apply(c, 1)
	assert.Equal(t, before, c.Rotations())
}

func TestSineCurveTurnsAtSpine(t *testing.T) {
	s := newSolver(t, Flip())

	assert.InDelta(t, -math.Pi, s.Target(0, joints, 1), 1e-12)
	assert.InDelta(t, -math.Pi*math.Sin(math.Pi/4), s.Target(0, joints, 0.5), 1e-12)
	for j := 1; j < joints; j++ {
		assert.Zero(t, s.Target(j, joints, 1))
	}
}

func TestSetParamsRejectsInvalid(t *testing.T) {
	s := newSolver(t, Curl())
	bad := Curl()
	bad.Easing = 0

	assert.ErrorIs(t, s.SetParams(bad), ErrInvalidParams)
	assert.Equal(t, Curl(), s.Params())

	require.NoError(t, s.SetParams(Flip()))
	assert.Equal(t, CurveSine, s.Params().Curve)
}
