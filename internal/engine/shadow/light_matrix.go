package shadow

import (
	gomath "math"

	"github.com/Faultbox/castle-book/pkg/math"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the center point of the box.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the half-diagonal.
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}

// LightMatrix returns the view-projection of a directional light travelling
// along dir that covers bounds. dir need not be normalized.
func LightMatrix(dir [3]float32, bounds AABB) math.Mat4 {
	d := math.Vec3FromArray(dir).Normalize()
	center := bounds.Center()
	radius := bounds.Radius()
	if radius <= 0 {
		radius = 1
	}

	// Back off against the light direction far enough to see the whole box.
	distance := radius * 2
	eye := center.Sub(d.Scale(distance))

	up := math.V3(0, 1, 0)
	if gomath.Abs(float64(d.Y)) > 0.99 {
		up = math.V3(0, 0, 1)
	}
	view := math.LookAt(eye, center, up)

	half := radius * 1.1
	proj := math.Ortho(-half, half, -half, half, 0.01, distance+half)
	return proj.Mul(view)
}
