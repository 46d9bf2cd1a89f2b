package skeleton

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/castle-book/pkg/math"
)

const tol = 1e-5

func TestNewChainInvalid(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		spacing float32
	}{
		{"single joint", 1, 0.1},
		{"zero joints", 0, 0.1},
		{"zero spacing", 5, 0},
		{"negative spacing", 5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChain(tt.count, tt.spacing)
			assert.ErrorIs(t, err, ErrInvalidChain)
		})
	}
}

func TestChainIsLinear(t *testing.T) {
	c, err := NewChain(31, 0.04)
	require.NoError(t, err)
	require.Equal(t, 31, c.Len())

	assert.Equal(t, -1, c.Joint(0).Parent)
	assert.Equal(t, math.Vec3{}, c.Joint(0).Offset)
	for i := 1; i < c.Len(); i++ {
		assert.Equal(t, i-1, c.Joint(i).Parent, "joint %d parent", i)
		assert.Equal(t, math.Vec3{X: 0.04}, c.Joint(i).Offset, "joint %d offset", i)
	}
}

func TestRestPoseSkinIsIdentity(t *testing.T) {
	c, err := NewChain(11, 0.1)
	require.NoError(t, err)

	id := math.Identity()
	for i, m := range c.SkinMatrices(nil) {
		for k := range m {
			assert.InDelta(t, id[k], m[k], tol, "joint %d element %d", i, k)
		}
	}
}

func TestWorldComposesFromRoot(t *testing.T) {
	c, err := NewChain(5, 0.25)
	require.NoError(t, err)

	tip := c.World(4).Translation()
	assert.InDelta(t, 1.0, tip.X, tol)

	// Turning the spine a quarter turn stands the whole chain up along +Z.
	c.SetRotation(0, -gomath.Pi/2)
	tip = c.World(4).Translation()
	assert.InDelta(t, 0, tip.X, tol)
	assert.InDelta(t, 1.0, tip.Z, tol)

	// A second bend at joint 2 is relative to the already-turned parent.
	c.SetRotation(2, -gomath.Pi/2)
	tip = c.World(4).Translation()
	assert.InDelta(t, -0.5, tip.X, tol)
	assert.InDelta(t, 0.5, tip.Z, tol)
}

func TestResetRestoresRestPose(t *testing.T) {
	c, err := NewChain(4, 1)
	require.NoError(t, err)

	c.SetRotation(1, 0.7)
	c.Reset()
	assert.Equal(t, []float64{0, 0, 0, 0}, c.Rotations())
	assert.InDelta(t, 3.0, c.World(3).Translation().X, tol)
}

func TestSkinMatricesReusesBuffer(t *testing.T) {
	c, err := NewChain(4, 1)
	require.NoError(t, err)

	buf := make([]math.Mat4, 0, 8)
	out := c.SkinMatrices(buf)
	assert.Len(t, out, 4)
	assert.Equal(t, 8, cap(out))
}

func TestDeformFollowsJoints(t *testing.T) {
	c, err := NewChain(3, 1)
	require.NoError(t, err)

	// Vertex halfway between joints 1 and 2.
	inf := Influence{Joints: [2]uint16{1, 2}, Weights: [2]float32{0.5, 0.5}}
	p := [3]float32{1.5, 0.2, 0}

	got := Deform(p, inf, c.SkinMatrices(nil))
	assert.InDeltaSlice(t, p[:], got[:], tol, "rest pose must not move vertices")

	c.SetRotation(0, -gomath.Pi/2)
	got = Deform(p, inf, c.SkinMatrices(nil))
	assert.InDelta(t, 0, got[0], tol)
	assert.InDelta(t, 0.2, got[1], tol)
	assert.InDelta(t, 1.5, got[2], tol)

	n := DeformDirection([3]float32{0, 0, 1}, inf, c.SkinMatrices(nil))
	assert.InDelta(t, -1, n[0], tol)
	assert.InDelta(t, 0, n[2], tol)
}
