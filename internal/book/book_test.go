package book

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/internal/engine/scene"
)

type nameList []string

func (n nameList) Len() int                 { return len(n) }
func (n nameList) Name(i int) string        { return n[i] }
func (n nameList) Description(i int) string { return "descriptions/" + n[i] + ".png" }
func (n nameList) Photo(i int) string       { return "photos/" + n[i] + ".jpg" }

type fixture struct {
	scene  *scene.Scene
	ctrl   *Controller
	driver *Driver
}

func newFixture(t *testing.T, pages nameList, opts Options, dopts DriverOptions) *fixture {
	t.Helper()
	builder, err := page.NewBuilder(page.DefaultShape(), nil)
	require.NoError(t, err)
	solver, err := bend.NewSolver(bend.Curl())
	require.NoError(t, err)

	sc := scene.New([3]float32{})
	driver := NewDriver(solver, dopts)
	ctrl, err := NewController(pages, builder, sc, driver, opts)
	require.NoError(t, err)
	return &fixture{scene: sc, ctrl: ctrl, driver: driver}
}

// finish ticks until the running turn commits.
func (f *fixture) finish(t *testing.T) {
	t.Helper()
	for i := 0; i < 1000 && f.ctrl.State() == Turning; i++ {
		require.NoError(t, f.ctrl.Update(time.Second/60))
	}
	require.NotEqual(t, Turning, f.ctrl.State())
}

func TestNewControllerNeedsPages(t *testing.T) {
	builder, err := page.NewBuilder(page.DefaultShape(), nil)
	require.NoError(t, err)
	solver, err := bend.NewSolver(bend.Curl())
	require.NoError(t, err)

	_, err = NewController(nameList{}, builder, scene.New([3]float32{}), NewDriver(solver, DriverOptions{}), Options{})
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestInitialSpread(t *testing.T) {
	f := newFixture(t, nameList{"Bedzin", "Bobolice"}, Options{}, DriverOptions{FixedStep: true})
	shape := page.DefaultShape()

	assert.Equal(t, Idle, f.ctrl.State())
	assert.Equal(t, 0, f.ctrl.Index())
	require.Equal(t, 2, f.scene.Len())

	left, right := f.scene.Meshes()[0], f.scene.Meshes()[1]
	assert.Equal(t, "descriptions/Bedzin.png", left.Front)
	assert.Equal(t, "photos/Bedzin.jpg", left.Back)
	assert.Equal(t, -shape.Width, left.Position.X)

	assert.Equal(t, "photos/Bobolice.jpg", right.Front)
	assert.Equal(t, "descriptions/Bobolice.png", right.Back)
	assert.Equal(t, float32(0), right.Position.X)
}

func TestTurnStateMachine(t *testing.T) {
	var started [][2]int
	var ended []int
	opts := Options{
		OnTurnStart: func(from, to int) { started = append(started, [2]int{from, to}) },
		OnTurnEnd:   func(idx int) { ended = append(ended, idx) },
	}
	f := newFixture(t, nameList{"A", "B", "C"}, opts, DriverOptions{FixedStep: true})
	before := f.ctrl.Visible()

	ok, err := f.ctrl.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Turning, f.ctrl.State())
	assert.Equal(t, 3, f.scene.Len())

	turning := f.ctrl.Turning()
	require.NotNil(t, turning)
	assert.Equal(t, "photos/B.jpg", turning.Front)
	assert.Equal(t, "descriptions/B.png", turning.Back)
	assert.Equal(t, page.DefaultShape().Depth, turning.Position.Z)

	require.NoError(t, f.ctrl.Update(0))
	progress := f.ctrl.Progress()
	assert.InDelta(t, 0.02, progress, 1e-12)

	// A second request mid-turn is dropped.
	ok, err = f.ctrl.Advance()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, f.ctrl.Index())
	assert.Equal(t, progress, f.ctrl.Progress())
	assert.Same(t, turning, f.ctrl.Turning())

	f.finish(t)
	assert.Equal(t, 1, f.ctrl.Index())
	assert.Equal(t, Idle, f.ctrl.State())
	assert.Nil(t, f.ctrl.Turning())
	assert.Zero(t, f.ctrl.Progress())
	assert.Equal(t, 50, f.driver.TickCount())

	// Fresh spread, nothing from the previous one left behind.
	assert.Equal(t, 2, f.scene.Len())
	assert.False(t, f.scene.Contains(turning))
	for _, m := range before {
		assert.False(t, f.scene.Contains(m))
	}
	assert.Equal(t, "descriptions/B.png", f.scene.Meshes()[0].Front)
	assert.Equal(t, "photos/C.jpg", f.scene.Meshes()[1].Front)

	assert.Equal(t, [][2]int{{0, 1}}, started)
	assert.Equal(t, []int{1}, ended)
}

func TestEndToEndThreePages(t *testing.T) {
	f := newFixture(t, nameList{"A", "B", "C"}, Options{}, DriverOptions{FixedStep: true})

	for turn := 0; turn < 4; turn++ {
		_, err := f.ctrl.Advance()
		require.NoError(t, err)
		f.finish(t)
	}
	assert.Equal(t, 2, f.ctrl.Index())
	assert.Equal(t, Terminal, f.ctrl.State())

	// Last page: only the left slot is filled.
	require.Equal(t, 1, f.scene.Len())
	assert.Equal(t, "descriptions/C.png", f.scene.Meshes()[0].Front)

	ok, err := f.ctrl.Advance()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, f.ctrl.Index())
	assert.Equal(t, 1, f.scene.Len())
}

func TestTripleLayout(t *testing.T) {
	tests := []struct {
		name     string
		source   BackSource
		wantBack string
	}{
		{"current", BackCurrent, "photos/A.jpg"},
		{"next", BackNext, "photos/B.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Layout: LayoutTriple, BackSource: tt.source}
			f := newFixture(t, nameList{"A", "B"}, opts, DriverOptions{FixedStep: true})

			require.Equal(t, 3, f.scene.Len())
			back := f.scene.Meshes()[2]
			assert.Equal(t, tt.wantBack, back.Front)
			assert.Equal(t, tt.wantBack, back.Back)
			assert.Less(t, back.Position.Z, float32(0))
		})
	}
}

func TestTripleLayoutNextOnLastPage(t *testing.T) {
	opts := Options{Layout: LayoutTriple, BackSource: BackNext}
	f := newFixture(t, nameList{"A"}, opts, DriverOptions{FixedStep: true})
	assert.Equal(t, Terminal, f.ctrl.State())
	assert.Equal(t, 1, f.scene.Len())
}

var errTextureGone = errors.New("texture gone")

// flakyBuilder fails every build once its budget is spent.
type flakyBuilder struct {
	*page.Builder
	left int
}

func (b *flakyBuilder) Build(front, back string) (*page.Mesh, error) {
	if b.left <= 0 {
		return nil, errTextureGone
	}
	b.left--
	return b.Builder.Build(front, back)
}

func TestFailedCommitKeepsSpread(t *testing.T) {
	inner, err := page.NewBuilder(page.DefaultShape(), nil)
	require.NoError(t, err)
	solver, err := bend.NewSolver(bend.Curl())
	require.NoError(t, err)

	// Two for the initial spread, one for the turning page, one more so the
	// commit fails halfway through the new spread.
	builder := &flakyBuilder{Builder: inner, left: 4}
	sc := scene.New([3]float32{})
	ctrl, err := NewController(nameList{"A", "B", "C"}, builder, sc, NewDriver(solver, DriverOptions{FixedStep: true}), Options{})
	require.NoError(t, err)
	before := ctrl.Visible()
	require.Len(t, before, 2)

	ok, err := ctrl.Advance()
	require.NoError(t, err)
	require.True(t, ok)

	var commitErr error
	for i := 0; i < 1000 && ctrl.State() == Turning; i++ {
		if commitErr = ctrl.Update(time.Second / 60); commitErr != nil {
			break
		}
	}
	require.ErrorIs(t, commitErr, errTextureGone)

	assert.Equal(t, 0, ctrl.Index())
	assert.Equal(t, Idle, ctrl.State())
	assert.Nil(t, ctrl.Turning())
	assert.Equal(t, before, ctrl.Visible())
	assert.Equal(t, 2, sc.Len())
	for _, m := range before {
		assert.True(t, sc.Contains(m))
	}

	// The page can be turned again once builds succeed.
	builder.left = 10
	ok, err = ctrl.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	for i := 0; i < 1000 && ctrl.State() == Turning; i++ {
		require.NoError(t, ctrl.Update(time.Second/60))
	}
	assert.Equal(t, 1, ctrl.Index())
	assert.False(t, sc.Contains(before[0]))
}

func TestParseOptions(t *testing.T) {
	l, err := ParseLayout("triple")
	require.NoError(t, err)
	assert.Equal(t, LayoutTriple, l)
	_, err = ParseLayout("fan")
	assert.Error(t, err)

	b, err := ParseBackSource("next")
	require.NoError(t, err)
	assert.Equal(t, BackNext, b)
	_, err = ParseBackSource("previous")
	assert.Error(t, err)
}
