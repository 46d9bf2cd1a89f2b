package book

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

func newDriver(t *testing.T, opts DriverOptions) (*Driver, *skeleton.Chain) {
	t.Helper()
	solver, err := bend.NewSolver(bend.Curl())
	require.NoError(t, err)
	chain, err := skeleton.NewChain(31, 1.28/30)
	require.NoError(t, err)
	return NewDriver(solver, opts), chain
}

func TestDriverTicksFromElapsedTime(t *testing.T) {
	d, _ := newDriver(t, DriverOptions{TickRate: 60})

	assert.Equal(t, 0, d.Ticks(8*time.Millisecond))
	assert.Equal(t, 1, d.Ticks(9*time.Millisecond))
	assert.Equal(t, 2, d.Ticks(2*time.Second/60))

	// A stall is capped and its backlog dropped.
	assert.Equal(t, DefaultMaxTicksPerFrame, d.Ticks(time.Second))
	assert.Equal(t, 0, d.Ticks(time.Millisecond))
}

func TestTickPeriod(t *testing.T) {
	assert.Equal(t, time.Second/60, TickPeriod(60))
	assert.Equal(t, time.Nanosecond, TickPeriod(1e9))
	for _, rate := range []float64{0, -60, math.NaN(), math.Inf(1), 2e9, 1e-12} {
		assert.Zero(t, TickPeriod(rate), "rate %v", rate)
	}
}

func TestDriverUnrepresentableRateFallsBack(t *testing.T) {
	for _, rate := range []float64{math.Inf(1), 2e9} {
		d, chain := newDriver(t, DriverOptions{TickRate: rate})
		d.Start(chain)
		require.NotPanics(t, func() { d.Update(time.Second / 60) }, "rate %v", rate)
		assert.Equal(t, 1, d.TickCount(), "rate %v runs at the default rate", rate)
	}
}

func TestDriverFixedStep(t *testing.T) {
	d, _ := newDriver(t, DriverOptions{FixedStep: true})
	assert.Equal(t, 1, d.Ticks(0))
	assert.Equal(t, 1, d.Ticks(time.Second))
}

func TestDriverTurnDurationIndependentOfFrameRate(t *testing.T) {
	for _, fps := range []int{30, 60, 144} {
		d, chain := newDriver(t, DriverOptions{TickRate: 60})
		d.Start(chain)

		frame := time.Second / time.Duration(fps)
		var elapsed time.Duration
		for d.Active() && elapsed < 10*time.Second {
			d.Update(frame)
			elapsed += frame
		}
		require.False(t, d.Active(), "fps %d", fps)
		assert.Equal(t, 50, d.TickCount(), "fps %d", fps)
		// 50 ticks at 60 Hz, give or take one frame.
		assert.InDelta(t, (50 * time.Second / 60).Seconds(), elapsed.Seconds(), frame.Seconds()+1e-3, "fps %d", fps)
	}
}

func TestDriverStep(t *testing.T) {
	d, chain := newDriver(t, DriverOptions{FixedStep: true})
	assert.False(t, d.Step(), "idle driver does nothing")

	d.Start(chain)
	require.True(t, d.Active())
	assert.False(t, d.Step())
	assert.InDelta(t, 0.02, d.Progress(), 1e-12)

	solver := d.Solver()
	for j := 0; j < chain.Len(); j++ {
		assert.Equal(t, solver.Target(j, chain.Len(), 0.02)*0.5, chain.Rotation(j))
	}

	for !d.Step() {
		require.Less(t, d.TickCount(), 100)
	}
	assert.Equal(t, 50, d.TickCount())
	assert.Equal(t, 1.0, d.Progress())
	assert.False(t, d.Active())
}

func TestDriverSetParamsMidTurn(t *testing.T) {
	d, chain := newDriver(t, DriverOptions{FixedStep: true})
	d.Start(chain)
	d.Step()

	require.NoError(t, d.SetParams(bend.Gentle()))
	d.Step()
	assert.InDelta(t, 0.035, d.Progress(), 1e-12)

	bad := bend.Curl()
	bad.Step = 0
	assert.ErrorIs(t, d.SetParams(bad), bend.ErrInvalidParams)
}
