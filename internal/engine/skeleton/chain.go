// Package skeleton implements the rotation-only joint chain that bends a page.
//
// Joints live in an arena indexed 0..n-1. Joint 0 is the root and sits at
// the page spine; every other joint i is parented to i-1 and offset from it
// by one segment width along +X, so the hierarchy is a strictly linear chain.
// Only the rotation about the vertical (Y) axis is animated.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/castle-book/pkg/math"
)

// ErrInvalidChain is returned for chains that cannot be built.
var ErrInvalidChain = errors.New("skeleton: invalid chain")

// Joint is a single pivot in the chain.
type Joint struct {
	// Parent is the index of the parent joint, or -1 for the root.
	Parent int
	// Offset is the rest translation relative to the parent.
	Offset math.Vec3
	// Rotation is the live angle about the Y axis, in radians.
	Rotation float64
}

// Chain is an ordered arena of joints with parent = i-1.
type Chain struct {
	joints  []Joint
	world   []math.Mat4
	bindInv []math.Mat4
	dirty   bool
}

// NewChain builds a chain of count joints spaced spacing apart along +X.
// The bind pose is the flat, unrotated chain.
func NewChain(count int, spacing float32) (*Chain, error) {
	if count < 2 {
		return nil, fmt.Errorf("%w: need at least 2 joints, got %d", ErrInvalidChain, count)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: non-positive spacing %v", ErrInvalidChain, spacing)
	}

	c := &Chain{
		joints:  make([]Joint, count),
		world:   make([]math.Mat4, count),
		bindInv: make([]math.Mat4, count),
		dirty:   true,
	}
	for i := range c.joints {
		c.joints[i].Parent = i - 1
		if i > 0 {
			c.joints[i].Offset = math.Vec3{X: spacing}
		}
	}

	// Rest pose has no rotation, so each inverse bind matrix is the
	// negated accumulated translation.
	var rest math.Vec3
	for i := range c.joints {
		rest = rest.Add(c.joints[i].Offset)
		c.bindInv[i] = math.TranslateVec(rest.Scale(-1))
	}
	return c, nil
}

// Len returns the number of joints.
func (c *Chain) Len() int {
	return len(c.joints)
}

// Joint returns a copy of joint i.
func (c *Chain) Joint(i int) Joint {
	return c.joints[i]
}

// Rotation returns the live rotation of joint i.
func (c *Chain) Rotation(i int) float64 {
	return c.joints[i].Rotation
}

// SetRotation sets the live rotation of joint i.
func (c *Chain) SetRotation(i int, angle float64) {
	if c.joints[i].Rotation != angle {
		c.joints[i].Rotation = angle
		c.dirty = true
	}
}

// Rotations returns the live rotations of all joints, root first.
func (c *Chain) Rotations() []float64 {
	out := make([]float64, len(c.joints))
	for i := range c.joints {
		out[i] = c.joints[i].Rotation
	}
	return out
}

// Reset returns every joint to the flat rest pose.
func (c *Chain) Reset() {
	for i := range c.joints {
		c.joints[i].Rotation = 0
	}
	c.dirty = true
}

// Update recomputes world matrices by composing from joint 0 outward.
// World matrices are relative to the owning mesh.
func (c *Chain) Update() {
	if !c.dirty {
		return
	}
	for i := range c.joints {
		j := &c.joints[i]
		local := math.TranslateVec(j.Offset).Mul(math.RotateY(float32(j.Rotation)))
		if j.Parent < 0 {
			c.world[i] = local
			continue
		}
		c.world[i] = c.world[j.Parent].Mul(local)
	}
	c.dirty = false
}

// World returns the mesh-space matrix of joint i.
func (c *Chain) World(i int) math.Mat4 {
	c.Update()
	return c.world[i]
}

// SkinMatrices writes world*inverseBind for every joint into dst, growing it
// as needed, and returns it. These are the per-joint transforms a renderer
// uploads.
func (c *Chain) SkinMatrices(dst []math.Mat4) []math.Mat4 {
	c.Update()
	if cap(dst) < len(c.joints) {
		dst = make([]math.Mat4, len(c.joints))
	}
	dst = dst[:len(c.joints)]
	for i := range c.joints {
		dst[i] = c.world[i].Mul(c.bindInv[i])
	}
	return dst
}
