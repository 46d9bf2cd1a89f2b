package page

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/engine/skeleton"
	"github.com/Faultbox/castle-book/internal/engine/texture"
	"github.com/Faultbox/castle-book/internal/logger"
)

var nextMeshID atomic.Uint64

// Builder produces page meshes of one shape.
type Builder struct {
	shape    Shape
	geometry *Geometry
	textures texture.Source
}

// NewBuilder validates shape and prepares its shared geometry. textures may
// be nil, in which case every page is untextured.
func NewBuilder(shape Shape, textures texture.Source) (*Builder, error) {
	g, err := SharedGeometry(shape)
	if err != nil {
		return nil, err
	}
	return &Builder{
		shape:    shape,
		geometry: g,
		textures: textures,
	}, nil
}

// Shape returns the page shape the builder produces.
func (b *Builder) Shape() Shape {
	return b.shape
}

// Build creates a fresh mesh and joint chain with front and back images.
// An image that fails to load leaves its face untextured.
func (b *Builder) Build(front, back string) (*Mesh, error) {
	chain, err := skeleton.NewChain(b.shape.JointCount(), b.shape.SegmentWidth())
	if err != nil {
		return nil, fmt.Errorf("build page chain: %w", err)
	}

	m := &Mesh{
		ID:        nextMeshID.Add(1),
		Geometry:  b.geometry,
		Materials: Materials(b.texture(front), b.texture(back)),
		Chain:     chain,
		Front:     front,
		Back:      back,
	}
	logger.Debug("page mesh built",
		zap.Uint64("mesh", m.ID),
		zap.String("front", front),
		zap.String("back", back),
	)
	return m, nil
}

func (b *Builder) texture(path string) texture.Handle {
	if b.textures == nil || path == "" {
		return texture.None
	}
	h, err := b.textures.Texture(path)
	if err != nil {
		// The source already reported it; the face degrades to a flat color.
		return texture.None
	}
	return h
}
