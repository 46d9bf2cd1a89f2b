// Package scene holds the page meshes currently on display.
package scene

import (
	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/pkg/math"
)

// Scene is an ordered set of page meshes. Meshes are drawn in insertion
// order. It is not safe for concurrent use; the frame loop owns it.
type Scene struct {
	meshes []*page.Mesh

	// Background is the clear color.
	Background [3]float32
}

// New creates an empty scene.
func New(background [3]float32) *Scene {
	return &Scene{Background: background}
}

// Add attaches m. Adding a mesh twice is a no-op.
func (s *Scene) Add(m *page.Mesh) {
	if m == nil || s.Contains(m) {
		return
	}
	s.meshes = append(s.meshes, m)
}

// Remove detaches m if present.
func (s *Scene) Remove(m *page.Mesh) {
	for i, existing := range s.meshes {
		if existing == m {
			copy(s.meshes[i:], s.meshes[i+1:])
			s.meshes[len(s.meshes)-1] = nil
			s.meshes = s.meshes[:len(s.meshes)-1]
			return
		}
	}
}

// Contains reports whether m is attached.
func (s *Scene) Contains(m *page.Mesh) bool {
	for _, existing := range s.meshes {
		if existing == m {
			return true
		}
	}
	return false
}

// Meshes returns the attached meshes. The slice is shared; do not modify it.
func (s *Scene) Meshes() []*page.Mesh {
	return s.meshes
}

// Len returns the number of attached meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}

// Clear detaches every mesh.
func (s *Scene) Clear() {
	clear(s.meshes)
	s.meshes = s.meshes[:0]
}

// Bounds returns the world-space box of every mesh at rest, and false when
// the scene is empty. A page turns toward +Z, so the box is padded by one
// page width on that side.
func (s *Scene) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(s.meshes) == 0 {
		return lo, hi, false
	}
	lo = math.V3(1e10, 1e10, 1e10)
	hi = math.V3(-1e10, -1e10, -1e10)
	for _, m := range s.meshes {
		b := m.Geometry.Bounds
		mlo := m.Position.Add(math.Vec3FromArray(b.Min))
		mhi := m.Position.Add(math.Vec3FromArray(b.Max))
		mhi.Z = max(mhi.Z, m.Position.Z+m.Geometry.Shape.Width)

		lo = math.V3(min(lo.X, mlo.X), min(lo.Y, mlo.Y), min(lo.Z, mlo.Z))
		hi = math.V3(max(hi.X, mhi.X), max(hi.Y, mhi.Y), max(hi.Z, mhi.Z))
	}
	return lo, hi, true
}
