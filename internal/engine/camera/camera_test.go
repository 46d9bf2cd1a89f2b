package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/castle-book/pkg/math"
)

func TestSetAspect(t *testing.T) {
	c := NewPerspective(75, 0.1, 100)
	c.SetAspect(1280, 720)
	assert.InDelta(t, 16.0/9.0, c.Aspect, 1e-6)

	c.SetAspect(0, 720)
	assert.InDelta(t, 16.0/9.0, c.Aspect, 1e-6, "minimised window keeps the ratio")
}

func TestViewLooksDownNegativeZ(t *testing.T) {
	c := NewPerspective(75, 0.1, 100)
	p := c.ViewMatrix().TransformPoint([3]float32{0, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -1.5, p[2], 1e-6)
}

func TestProjectionWidensWithAspect(t *testing.T) {
	c := NewPerspective(75, 0.1, 100)
	square := c.ProjectionMatrix()
	c.SetAspect(2000, 1000)
	wide := c.ProjectionMatrix()

	assert.InDelta(t, square[0]/2, wide[0], 1e-6)
	assert.Equal(t, square[5], wide[5])
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewPerspective(60, 0.1, 100)
	c.Target = math.V3(0.5, 0, 0)
	c.Position = math.V3(0.5, 0, 2)
	vp := c.ViewProjection()

	// Clip-space x and y of the target are zero.
	x := vp[0]*0.5 + vp[12]
	y := vp[1]*0.5 + vp[13]
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
}
