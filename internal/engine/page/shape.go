// Package page builds the segmented, skinned panel a book page is drawn with.
//
// A page is a thin box W x H x D cut into S equal segments along its width
// and 2 along its height. The box is shifted so its spine edge sits at x=0,
// which puts joint 0 of the bending chain exactly on the spine and lets
// neighbouring pages be laid edge to edge by their position alone.
package page

import (
	"errors"
	"fmt"
)

// MaxJoints is the size of the joint uniform array in the page shader.
const MaxJoints = 64

// HeightSegments is the fixed vertical subdivision of every page.
const HeightSegments = 2

// ErrInvalidShape is returned for page shapes that cannot produce a joint chain.
var ErrInvalidShape = errors.New("page: invalid shape")

// Shape describes the panel every page shares.
type Shape struct {
	Width    float32
	Height   float32
	Depth    float32
	Segments int
}

// DefaultShape returns the shape of a castle book page.
func DefaultShape() Shape {
	return Shape{
		Width:    1.28,
		Height:   1.71,
		Depth:    0.003,
		Segments: 30,
	}
}

// Validate reports why s cannot be built, wrapping ErrInvalidShape.
func (s Shape) Validate() error {
	switch {
	case s.Segments < 1:
		return fmt.Errorf("%w: segments must be >= 1, got %d", ErrInvalidShape, s.Segments)
	case s.Segments+1 > MaxJoints:
		return fmt.Errorf("%w: %d segments need %d joints, renderer supports %d",
			ErrInvalidShape, s.Segments, s.Segments+1, MaxJoints)
	case !(s.Width > 0):
		return fmt.Errorf("%w: width must be positive, got %v", ErrInvalidShape, s.Width)
	case !(s.Height > 0):
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidShape, s.Height)
	case s.Depth < 0:
		return fmt.Errorf("%w: depth must not be negative, got %v", ErrInvalidShape, s.Depth)
	}
	return nil
}

// SegmentWidth is W/S, the spacing between neighbouring joints.
func (s Shape) SegmentWidth() float32 {
	return s.Width / float32(s.Segments)
}

// JointCount is S+1.
func (s Shape) JointCount() int {
	return s.Segments + 1
}
