package page

import (
	"math"

	"github.com/Faultbox/castle-book/internal/engine/skeleton"
)

// snapEpsilon absorbs float32 drift so vertices sitting on a joint bind to
// it exactly.
const snapEpsilon = 1e-4

// Bind computes the two-joint influence of a vertex at distance x from the
// spine. Joint indices are floor(x/segWidth) and the next one, weighted
// linearly. Vertices on or past the free edge clamp to the last joint with
// weights (1, 0); vertices before the spine clamp to joint 0.
func Bind(x, segWidth float32, segments int) skeleton.Influence {
	t := float64(x) / float64(segWidth)
	if r := math.Round(t); math.Abs(t-r) < snapEpsilon {
		t = r
	}

	si := int(math.Floor(t))
	w := t - float64(si)
	switch {
	case si < 0:
		si, w = 0, 0
	case si >= segments:
		si, w = segments, 0
	}

	next := si + 1
	if next > segments {
		next = segments
	}
	return skeleton.Influence{
		Joints:  [2]uint16{uint16(si), uint16(next)},
		Weights: [2]float32{float32(1 - w), float32(w)},
	}
}
