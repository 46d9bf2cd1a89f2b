package skeleton

import "github.com/Faultbox/castle-book/pkg/math"

// Influence binds a vertex to two joints with weights summing to 1.
type Influence struct {
	Joints  [2]uint16
	Weights [2]float32
}

// Deform applies linear blend skinning to a bind-pose point.
func Deform(p [3]float32, inf Influence, skin []math.Mat4) [3]float32 {
	var out [3]float32
	for k := 0; k < 2; k++ {
		w := inf.Weights[k]
		if w == 0 {
			continue
		}
		q := skin[inf.Joints[k]].TransformPoint(p)
		out[0] += q[0] * w
		out[1] += q[1] * w
		out[2] += q[2] * w
	}
	return out
}

// DeformDirection is Deform for normals; the result is not renormalized.
func DeformDirection(d [3]float32, inf Influence, skin []math.Mat4) [3]float32 {
	var out [3]float32
	for k := 0; k < 2; k++ {
		w := inf.Weights[k]
		if w == 0 {
			continue
		}
		q := skin[inf.Joints[k]].TransformDirection(d)
		out[0] += q[0] * w
		out[1] += q[1] * w
		out[2] += q[2] * w
	}
	return out
}
