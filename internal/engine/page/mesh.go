package page

import (
	"github.com/Faultbox/castle-book/internal/engine/skeleton"
	"github.com/Faultbox/castle-book/pkg/math"
)

// Mesh is one page instance: shared geometry, its own materials and its own
// joint chain. Joint 0 is attached to the mesh origin, the spine.
type Mesh struct {
	ID        uint64
	Geometry  *Geometry
	Materials [6]Material
	Chain     *skeleton.Chain

	// Position places the spine in world space.
	Position math.Vec3

	// Front and Back are the image paths the faces were built from.
	Front string
	Back  string
}

// ModelMatrix returns the mesh-to-world transform.
func (m *Mesh) ModelMatrix() math.Mat4 {
	return math.TranslateVec(m.Position)
}

// SkinMatrices returns the per-joint transforms for the current pose.
func (m *Mesh) SkinMatrices(dst []math.Mat4) []math.Mat4 {
	return m.Chain.SkinMatrices(dst)
}

// Pose skins the geometry on the CPU into dst and returns it. Positions and
// normals are in mesh space.
func (m *Mesh) Pose(dst []Vertex) []Vertex {
	skin := m.Chain.SkinMatrices(nil)
	src := m.Geometry.Vertices
	if cap(dst) < len(src) {
		dst = make([]Vertex, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		inf := v.Influence()
		v.Position = skeleton.Deform(v.Position, inf, skin)
		n := math.Vec3FromArray(skeleton.DeformDirection(v.Normal, inf, skin)).Normalize()
		v.Normal = n.Array()
		dst[i] = v
	}
	return dst
}

// Bounds returns the mesh-space bounds of the current pose.
func (m *Mesh) Bounds() Bounds {
	posed := m.Pose(nil)
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for _, v := range posed {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], v.Position[k])
			b.Max[k] = max(b.Max[k], v.Position[k])
		}
	}
	return b
}
