package book

import (
	"math"
	"time"

	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

// DefaultTickRate is the number of bend ticks per second.
const DefaultTickRate = 60

// DefaultMaxTicksPerFrame bounds the catch-up after a long frame.
const DefaultMaxTicksPerFrame = 5

// DriverOptions configures turn pacing.
type DriverOptions struct {
	// TickRate is the tick frequency in Hz. Zero selects DefaultTickRate.
	TickRate float64
	// FixedStep runs exactly one tick per frame regardless of elapsed time.
	FixedStep bool
	// MaxTicksPerFrame caps ticks per Update. Zero selects the default.
	MaxTicksPerFrame int
}

// Driver advances one turn at a time: each tick adds the solver's step to
// the progress and bends the chain toward the new target.
type Driver struct {
	solver    *bend.Solver
	period    time.Duration
	fixedStep bool
	maxTicks  int

	acc      time.Duration
	chain    *skeleton.Chain
	progress float64
	ticks    int
}

// NewDriver creates a driver around solver.
func NewDriver(solver *bend.Solver, opts DriverOptions) *Driver {
	rate := opts.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	maxTicks := opts.MaxTicksPerFrame
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicksPerFrame
	}
	period := TickPeriod(rate)
	if period <= 0 {
		period = TickPeriod(DefaultTickRate)
	}
	return &Driver{
		solver:    solver,
		period:    period,
		fixedStep: opts.FixedStep,
		maxTicks:  maxTicks,
	}
}

// TickPeriod returns the duration of one tick at rate Hz. It returns 0 when
// the rate is not positive and finite or the period does not fit in
// [1ns, math.MaxInt64 ns].
func TickPeriod(rate float64) time.Duration {
	if !(rate > 0) || math.IsInf(rate, 1) {
		return 0
	}
	period := float64(time.Second) / rate
	if period >= math.MaxInt64 {
		return 0
	}
	return time.Duration(period)
}

// Start begins a turn on chain with progress 0.
func (d *Driver) Start(chain *skeleton.Chain) {
	d.chain = chain
	d.progress = 0
	d.ticks = 0
	d.acc = 0
}

// Active reports whether a turn is in flight.
func (d *Driver) Active() bool {
	return d.chain != nil
}

// Progress returns the turn progress in [0,1].
func (d *Driver) Progress() float64 {
	return d.progress
}

// TickCount returns the ticks run since Start.
func (d *Driver) TickCount() int {
	return d.ticks
}

// Solver returns the bend solver.
func (d *Driver) Solver() *bend.Solver {
	return d.solver
}

// SetParams swaps the bend tunables between ticks.
func (d *Driver) SetParams(p bend.Params) error {
	return d.solver.SetParams(p)
}

// Ticks converts a frame's elapsed time into a tick count.
func (d *Driver) Ticks(dt time.Duration) int {
	if d.fixedStep {
		return 1
	}
	if dt > 0 {
		d.acc += dt
	}
	n := int(d.acc / d.period)
	if n > d.maxTicks {
		// Drop the backlog instead of fast-forwarding the page.
		d.acc = 0
		return d.maxTicks
	}
	d.acc -= time.Duration(n) * d.period
	return n
}

// Step runs one tick and reports whether the turn finished.
func (d *Driver) Step() bool {
	if d.chain == nil {
		return false
	}
	p := d.solver.Params()
	d.progress += p.Step
	if d.progress >= 1-1e-9 {
		d.progress = 1
	}
	d.ticks++
	d.solver.Apply(d.chain, d.progress)

	if d.progress >= 1 {
		d.chain = nil
		return true
	}
	return false
}

// Update runs the ticks due for dt and reports whether the turn finished.
func (d *Driver) Update(dt time.Duration) bool {
	if d.chain == nil {
		return false
	}
	for n := d.Ticks(dt); n > 0; n-- {
		if d.Step() {
			return true
		}
	}
	return false
}
