package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapReader map[string][]byte

func (m mapReader) Load(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

type fakeUploader struct {
	next    Handle
	uploads []*image.RGBA
	deleted []Handle
}

func (u *fakeUploader) Upload(img *image.RGBA) (Handle, error) {
	u.next++
	u.uploads = append(u.uploads, img)
	return u.next, nil
}

func (u *fakeUploader) Delete(h Handle) {
	u.deleted = append(u.deleted, h)
}

func encodePNG(t *testing.T, w, h int, top, bottom color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := top
		if y >= h/2 {
			c = bottom
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestLibraryCachesByPath(t *testing.T) {
	reader := mapReader{"photos/Bedzin.jpg": encodePNG(t, 4, 4, red, blue)}
	up := &fakeUploader{}
	lib := NewLibrary(reader, up, 0)

	h1, err := lib.Texture("photos/Bedzin.jpg")
	require.NoError(t, err)
	h2, err := lib.Texture("photos/Bedzin.jpg")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, None, h1)
	assert.Len(t, up.uploads, 1)
	assert.Equal(t, 1, lib.Len())
}

func TestLibraryUploadsFlipped(t *testing.T) {
	reader := mapReader{"a.png": encodePNG(t, 2, 2, red, blue)}
	up := &fakeUploader{}
	lib := NewLibrary(reader, up, 0)

	_, err := lib.Texture("a.png")
	require.NoError(t, err)
	require.Len(t, up.uploads, 1)

	// First uploaded row is the bottom of the source image.
	assert.Equal(t, blue, up.uploads[0].RGBAAt(0, 0))
	assert.Equal(t, red, up.uploads[0].RGBAAt(0, 1))
}

func TestLibraryRemembersFailures(t *testing.T) {
	reader := mapReader{"broken.png": []byte("not an image")}
	up := &fakeUploader{}
	lib := NewLibrary(reader, up, 0)

	for _, path := range []string{"missing.png", "broken.png"} {
		h, err := lib.Texture(path)
		assert.Error(t, err, path)
		assert.Equal(t, None, h)

		again, err2 := lib.Texture(path)
		assert.Equal(t, None, again)
		assert.Equal(t, err, err2, "failure for %s should be cached", path)
	}
	assert.Empty(t, up.uploads)
}

func TestLibraryEmptyPath(t *testing.T) {
	lib := NewLibrary(mapReader{}, &fakeUploader{}, 0)
	_, err := lib.Texture("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestLibraryCloseDeletes(t *testing.T) {
	reader := mapReader{
		"a.png": encodePNG(t, 2, 2, red, blue),
		"b.png": encodePNG(t, 2, 2, blue, red),
	}
	up := &fakeUploader{}
	lib := NewLibrary(reader, up, 0)
	_, _ = lib.Texture("a.png")
	_, _ = lib.Texture("b.png")

	lib.Close()
	assert.ElementsMatch(t, []Handle{1, 2}, up.deleted)
	assert.Equal(t, 0, lib.Len())
}

func TestFitKeepsAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	got := Fit(img, 100)
	assert.Equal(t, 100, got.Bounds().Dx())
	assert.Equal(t, 50, got.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, Fit(small, 100))
}

func TestToRGBARebasesBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, red)
	got := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
	assert.Equal(t, red, got.RGBAAt(0, 0))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0, 1, 2, 3})
	assert.Error(t, err)
}
