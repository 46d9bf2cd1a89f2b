// Package texture loads page images into 2D texture handles.
//
// Decoding and resizing happen here; the GPU upload is delegated to an
// Uploader so the package stays usable without a GL context.
package texture

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/logger"
)

// Handle identifies an uploaded texture. The zero Handle means "no texture";
// faces carrying it are drawn with their flat color only.
type Handle uint32

// None is the untextured handle.
const None Handle = 0

// DefaultMaxSize is the largest edge, in pixels, an uploaded image keeps.
const DefaultMaxSize = 2048

// ErrEmptyPath is returned when a texture is requested without a path.
var ErrEmptyPath = errors.New("texture: empty path")

// Source resolves a path to a texture handle.
type Source interface {
	Texture(path string) (Handle, error)
}

// Reader loads raw file bytes by asset path.
type Reader interface {
	Load(path string) ([]byte, error)
}

// Uploader turns decoded pixels into GPU textures.
type Uploader interface {
	Upload(img *image.RGBA) (Handle, error)
	Delete(h Handle)
}

// Library caches one handle per path for the lifetime of the viewer.
// Failed loads are remembered too, so a missing image is only reported once.
type Library struct {
	reader   Reader
	uploader Uploader
	maxSize  int

	handles map[string]Handle
	failed  map[string]error
}

// NewLibrary creates a texture library. maxSize <= 0 selects DefaultMaxSize.
func NewLibrary(reader Reader, uploader Uploader, maxSize int) *Library {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Library{
		reader:   reader,
		uploader: uploader,
		maxSize:  maxSize,
		handles:  make(map[string]Handle),
		failed:   make(map[string]error),
	}
}

// Texture returns the handle for path, loading it on first use.
func (l *Library) Texture(path string) (Handle, error) {
	if path == "" {
		return None, ErrEmptyPath
	}
	if h, ok := l.handles[path]; ok {
		return h, nil
	}
	if err, ok := l.failed[path]; ok {
		return None, err
	}

	h, err := l.load(path)
	if err != nil {
		err = fmt.Errorf("texture %s: %w", path, err)
		l.failed[path] = err
		logger.Warn("texture load failed, face stays untextured",
			zap.String("path", path),
			zap.Error(err),
		)
		return None, err
	}

	l.handles[path] = h
	logger.Debug("texture loaded", zap.String("path", path), zap.Uint32("handle", uint32(h)))
	return h, nil
}

func (l *Library) load(path string) (Handle, error) {
	data, err := l.reader.Load(path)
	if err != nil {
		return None, err
	}
	img, err := Decode(data)
	if err != nil {
		return None, err
	}
	rgba := ToRGBA(Fit(img, l.maxSize))
	FlipVertical(rgba)
	return l.uploader.Upload(rgba)
}

// Len returns the number of cached textures.
func (l *Library) Len() int {
	return len(l.handles)
}

// Close deletes every uploaded texture and forgets cached failures.
func (l *Library) Close() {
	for path, h := range l.handles {
		l.uploader.Delete(h)
		delete(l.handles, path)
	}
	l.failed = make(map[string]error)
}
