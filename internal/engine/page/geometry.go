package page

import (
	"sync"
	"unsafe"

	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

// Vertex is the interleaved layout uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Joints   [2]uint16
	Weights  [2]float32
}

// Vertex attribute layout.
const (
	VertexStride   = int32(unsafe.Sizeof(Vertex{}))
	OffsetPosition = uintptr(unsafe.Offsetof(Vertex{}.Position))
	OffsetNormal   = uintptr(unsafe.Offsetof(Vertex{}.Normal))
	OffsetTexCoord = uintptr(unsafe.Offsetof(Vertex{}.TexCoord))
	OffsetJoints   = uintptr(unsafe.Offsetof(Vertex{}.Joints))
	OffsetWeights  = uintptr(unsafe.Offsetof(Vertex{}.Weights))
)

// Influence returns the vertex skin binding.
func (v Vertex) Influence() skeleton.Influence {
	return skeleton.Influence{Joints: v.Joints, Weights: v.Weights}
}

// Face indexes the six box faces. The order is also the material order.
type Face int

const (
	FaceEdge   Face = iota // +X, free edge
	FaceSpine              // -X
	FaceTop                // +Y
	FaceBottom             // -Y
	FaceFront              // +Z
	FaceBack               // -Z
	faceCount
)

var faceNames = [...]string{"edge", "spine", "top", "bottom", "front", "back"}

func (f Face) String() string {
	if f < 0 || f >= faceCount {
		return "unknown"
	}
	return faceNames[f]
}

// FaceGroup is the index range drawn with one face material.
type FaceGroup struct {
	Face       Face
	StartIndex int32
	IndexCount int32
}

// Bounds is an axis-aligned box in mesh space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Geometry is the flat page with its skin binding. It is immutable once
// built and shared by every mesh of the same Shape.
type Geometry struct {
	Shape    Shape
	Vertices []Vertex
	Indices  []uint32
	Groups   [6]FaceGroup
	Bounds   Bounds
}

var (
	geometryMu    sync.Mutex
	geometryCache = make(map[Shape]*Geometry)
)

// SharedGeometry returns the geometry for s, building it on first use.
func SharedGeometry(s Shape) (*Geometry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	geometryMu.Lock()
	defer geometryMu.Unlock()

	if g, ok := geometryCache[s]; ok {
		return g, nil
	}
	g := BuildGeometry(s)
	geometryCache[s] = g
	return g, nil
}

// BuildGeometry builds the box for s. The shape must be valid.
//
// Faces are laid out like a three.js BoxGeometry with S width segments,
// 2 height segments and 1 depth segment, then translated by +W/2 so the
// spine is at x=0.
func BuildGeometry(s Shape) *Geometry {
	b := boxBuilder{}
	w, h, d := float64(s.Width), float64(s.Height), float64(s.Depth)
	seg := s.Segments

	b.plane(FaceEdge, axisZ, axisY, axisX, -1, -1, d, h, w, 1, HeightSegments)
	b.plane(FaceSpine, axisZ, axisY, axisX, 1, -1, d, h, -w, 1, HeightSegments)
	b.plane(FaceTop, axisX, axisZ, axisY, 1, 1, w, d, h, seg, 1)
	b.plane(FaceBottom, axisX, axisZ, axisY, 1, -1, w, d, -h, seg, 1)
	b.plane(FaceFront, axisX, axisY, axisZ, 1, -1, w, h, d, seg, HeightSegments)
	b.plane(FaceBack, axisX, axisY, axisZ, -1, -1, w, h, -d, seg, HeightSegments)

	g := &Geometry{
		Shape:    s,
		Vertices: b.vertices,
		Indices:  b.indices,
		Groups:   b.groups,
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	segW := s.SegmentWidth()
	for i := range g.Vertices {
		v := &g.Vertices[i]
		v.Position[0] = float32(float64(v.Position[0]) + w/2)
		inf := Bind(v.Position[0], segW, seg)
		v.Joints, v.Weights = inf.Joints, inf.Weights

		for k := 0; k < 3; k++ {
			g.Bounds.Min[k] = min(g.Bounds.Min[k], v.Position[k])
			g.Bounds.Max[k] = max(g.Bounds.Max[k], v.Position[k])
		}
	}
	return g
}

type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

type boxBuilder struct {
	vertices []Vertex
	indices  []uint32
	groups   [6]FaceGroup
}

// plane appends one face grid. u and v are the in-plane axes, w the face
// normal axis; depth is the signed offset along w.
func (b *boxBuilder) plane(face Face, u, v, w axis, udir, vdir float64,
	width, height, depth float64, gridX, gridY int) {

	segW := width / float64(gridX)
	segH := height / float64(gridY)
	halfW, halfH, halfD := width/2, height/2, depth/2

	normal := float32(1)
	if depth < 0 {
		normal = -1
	}

	base := uint32(len(b.vertices))
	for iy := 0; iy <= gridY; iy++ {
		y := float64(iy)*segH - halfH
		for ix := 0; ix <= gridX; ix++ {
			x := float64(ix)*segW - halfW

			var vert Vertex
			vert.Position[u] = float32(x * udir)
			vert.Position[v] = float32(y * vdir)
			vert.Position[w] = float32(halfD)
			vert.Normal[w] = normal
			vert.TexCoord = [2]float32{
				float32(ix) / float32(gridX),
				1 - float32(iy)/float32(gridY),
			}
			b.vertices = append(b.vertices, vert)
		}
	}

	start := int32(len(b.indices))
	row := uint32(gridX + 1)
	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := base + uint32(ix) + row*uint32(iy)
			bb := base + uint32(ix) + row*uint32(iy+1)
			c := base + uint32(ix+1) + row*uint32(iy+1)
			d := base + uint32(ix+1) + row*uint32(iy)
			b.indices = append(b.indices, a, bb, d, bb, c, d)
		}
	}
	b.groups[face] = FaceGroup{
		Face:       face,
		StartIndex: start,
		IndexCount: int32(len(b.indices)) - start,
	}
}
