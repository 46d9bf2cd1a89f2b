// Package camera provides the perspective camera the book is viewed with.
package camera

import (
	gomath "math"

	"github.com/Faultbox/castle-book/pkg/math"
)

// Perspective is a fixed camera looking at a target point.
type Perspective struct {
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
}

// NewPerspective creates a camera at (0, 0, 1.5) looking at the spine.
func NewPerspective(fov, near, far float32) *Perspective {
	return &Perspective{
		FOV:      fov,
		Aspect:   1,
		Near:     near,
		Far:      far,
		Position: math.V3(0, 0, 1.5),
		Up:       math.V3(0, 1, 0),
	}
}

// SetAspect updates the aspect ratio from a viewport size. Degenerate sizes
// (a minimised window) keep the previous ratio.
func (c *Perspective) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Perspective) ViewMatrix() math.Mat4 {
	up := c.Up
	if up == (math.Vec3{}) {
		up = math.V3(0, 1, 0)
	}
	return math.LookAt(c.Position, c.Target, up)
}

// ProjectionMatrix returns the perspective projection.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	fovY := float32(float64(c.FOV) * gomath.Pi / 180)
	return math.Perspective(fovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
