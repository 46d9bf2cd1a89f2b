// Package book runs the castle book: which pages lie open, which one is
// turning, and the advance-to-next-page transition.
package book

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/internal/logger"
	"github.com/Faultbox/castle-book/pkg/math"
)

// ErrNoPages is returned when a book is opened without pages.
var ErrNoPages = errors.New("book: no pages")

// Scene receives the meshes on display.
type Scene interface {
	Add(m *page.Mesh)
	Remove(m *page.Mesh)
}

// MeshBuilder produces a fresh mesh and joint chain per call.
type MeshBuilder interface {
	Build(front, back string) (*page.Mesh, error)
	Shape() page.Shape
}

// Pages is the ordered page list with the two images of each page.
type Pages interface {
	Len() int
	Name(i int) string
	Description(i int) string
	Photo(i int) string
}

// State is the controller state.
type State int

const (
	Idle State = iota
	Turning
	// Terminal is Idle on the last page; advancing is a no-op.
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Turning:
		return "turning"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Layout selects how the open spread is assembled.
type Layout int

const (
	// LayoutSpread shows a left and a right page.
	LayoutSpread Layout = iota
	// LayoutTriple adds a backing page behind the spread.
	LayoutTriple
)

// ParseLayout converts a config name to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch name {
	case "", "spread":
		return LayoutSpread, nil
	case "triple":
		return LayoutTriple, nil
	}
	return 0, fmt.Errorf("book: unknown layout %q", name)
}

// BackSource picks the page whose photo is used for the backing page.
type BackSource int

const (
	BackCurrent BackSource = iota
	BackNext
)

// ParseBackSource converts a config name to a BackSource.
func ParseBackSource(name string) (BackSource, error) {
	switch name {
	case "", "current":
		return BackCurrent, nil
	case "next":
		return BackNext, nil
	}
	return 0, fmt.Errorf("book: unknown back source %q", name)
}

// Options configures a Controller.
type Options struct {
	Layout     Layout
	BackSource BackSource
	// OnTurnStart is called after a turn from page from to page to begins.
	OnTurnStart func(from, to int)
	// OnTurnEnd is called once the spread for page idx is shown.
	OnTurnEnd func(idx int)
}

// Controller owns the spread and every mesh it puts in the scene.
// It is driven from a single goroutine.
type Controller struct {
	pages   Pages
	builder MeshBuilder
	scene   Scene
	driver  *Driver
	opts    Options
	shape   page.Shape

	idx     int
	left    *page.Mesh
	right   *page.Mesh
	back    *page.Mesh
	turning *page.Mesh
}

// NewController opens the book at page 0.
func NewController(pages Pages, builder MeshBuilder, scene Scene, driver *Driver, opts Options) (*Controller, error) {
	if pages == nil || pages.Len() == 0 {
		return nil, ErrNoPages
	}
	c := &Controller{
		pages:   pages,
		builder: builder,
		scene:   scene,
		driver:  driver,
		opts:    opts,
		shape:   builder.Shape(),
	}
	if err := c.showSpread(); err != nil {
		return nil, err
	}
	return c, nil
}

// Index returns the page shown on the left.
func (c *Controller) Index() int {
	return c.idx
}

// State returns the current state.
func (c *Controller) State() State {
	switch {
	case c.turning != nil:
		return Turning
	case !c.hasNext():
		return Terminal
	default:
		return Idle
	}
}

// Progress returns the turn progress, or 0 when idle.
func (c *Controller) Progress() float64 {
	if c.turning == nil {
		return 0
	}
	return c.driver.Progress()
}

// Driver returns the animation driver.
func (c *Controller) Driver() *Driver {
	return c.driver
}

// Visible returns the meshes the controller has in the scene: left, right,
// back and turning, skipping empty slots.
func (c *Controller) Visible() []*page.Mesh {
	out := make([]*page.Mesh, 0, 4)
	for _, m := range []*page.Mesh{c.left, c.right, c.back, c.turning} {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Turning returns the mesh in flight, or nil.
func (c *Controller) Turning() *page.Mesh {
	return c.turning
}

// Advance starts turning to the next page. It returns false without error
// when a turn is already running or the book is on its last page.
func (c *Controller) Advance() (bool, error) {
	if c.turning != nil || !c.hasNext() {
		return false, nil
	}

	next := c.idx + 1
	m, err := c.builder.Build(c.pages.Photo(next), c.pages.Description(next))
	if err != nil {
		return false, fmt.Errorf("build turning page %d: %w", next, err)
	}
	// Just above the right page so the two do not z-fight.
	m.Position = math.V3(0, 0, c.shape.Depth)
	c.scene.Add(m)
	c.turning = m
	c.driver.Start(m.Chain)

	logger.Info("page turn started",
		zap.Int("from", c.idx),
		zap.Int("to", next),
		zap.String("page", c.pages.Name(next)),
	)
	if c.opts.OnTurnStart != nil {
		c.opts.OnTurnStart(c.idx, next)
	}
	return true, nil
}

// Update advances a running turn by dt and commits it once complete. If the
// new spread cannot be built the turn is dropped and the book stays open
// at the old page.
func (c *Controller) Update(dt time.Duration) error {
	if c.turning == nil {
		return nil
	}
	if !c.driver.Update(dt) {
		return nil
	}

	c.scene.Remove(c.turning)
	c.turning = nil

	next := c.idx + 1
	sp, err := c.buildSpread(next)
	if err != nil {
		logger.Warn("page turn dropped",
			zap.Int("index", c.idx),
			zap.Int("to", next),
			zap.Error(err),
		)
		return err
	}
	c.idx = next
	c.swapSpread(sp)

	logger.Info("page turn finished",
		zap.Int("index", c.idx),
		zap.String("page", c.pages.Name(c.idx)),
		zap.Int("ticks", c.driver.TickCount()),
	)
	if c.opts.OnTurnEnd != nil {
		c.opts.OnTurnEnd(c.idx)
	}
	return nil
}

func (c *Controller) hasNext() bool {
	return c.idx+1 < c.pages.Len()
}

// spread is the set of resting meshes for one page index.
type spread struct {
	left, right, back *page.Mesh
}

// showSpread builds and shows the resting meshes for the current index.
func (c *Controller) showSpread() error {
	sp, err := c.buildSpread(c.idx)
	if err != nil {
		return err
	}
	c.swapSpread(sp)
	return nil
}

// buildSpread builds the resting meshes for page i without touching the
// scene.
func (c *Controller) buildSpread(i int) (spread, error) {
	var sp spread
	left, err := c.builder.Build(c.pages.Description(i), c.pages.Photo(i))
	if err != nil {
		return spread{}, fmt.Errorf("build left page %d: %w", i, err)
	}
	left.Position = math.V3(-c.shape.Width, 0, 0)
	sp.left = left

	hasNext := i+1 < c.pages.Len()
	if hasNext {
		right, err := c.builder.Build(c.pages.Photo(i+1), c.pages.Description(i+1))
		if err != nil {
			return spread{}, fmt.Errorf("build right page %d: %w", i+1, err)
		}
		sp.right = right
	}

	if c.opts.Layout == LayoutTriple {
		src := i
		if c.opts.BackSource == BackNext {
			src++
		}
		if src == i || hasNext {
			photo := c.pages.Photo(src)
			back, err := c.builder.Build(photo, photo)
			if err != nil {
				return spread{}, fmt.Errorf("build back page %d: %w", src, err)
			}
			back.Position = math.V3(0, 0, -2*c.shape.Depth)
			sp.back = back
		}
	}
	return sp, nil
}

// swapSpread replaces the resting meshes in the scene with sp.
func (c *Controller) swapSpread(sp spread) {
	for _, m := range []*page.Mesh{c.left, c.right, c.back} {
		if m != nil {
			c.scene.Remove(m)
		}
	}
	c.left, c.right, c.back = sp.left, sp.right, sp.back
	for _, m := range []*page.Mesh{c.left, c.right, c.back} {
		if m != nil {
			c.scene.Add(m)
		}
	}

	logger.Debug("spread shown",
		zap.Int("index", c.idx),
		zap.String("page", c.pages.Name(c.idx)),
		zap.Bool("right", c.right != nil),
	)
}
