package page

import "github.com/Faultbox/castle-book/internal/engine/texture"

// Material is the surface of one box face.
type Material struct {
	Color      [3]float32
	Texture    texture.Handle
	DoubleSide bool
}

// Textured reports whether the face samples an image.
func (m Material) Textured() bool {
	return m.Texture != texture.None
}

var (
	colorWhite = [3]float32{1, 1, 1}
	colorDark  = [3]float32{0x11 / 255.0, 0x11 / 255.0, 0x11 / 255.0}
)

// Materials returns the face materials for a page. Edge faces get flat
// colors; the two large faces carry the images and are visible from both
// sides so a turned page shows its back.
func Materials(front, back texture.Handle) [6]Material {
	return [6]Material{
		FaceEdge:   {Color: colorWhite},
		FaceSpine:  {Color: colorDark},
		FaceTop:    {Color: colorWhite},
		FaceBottom: {Color: colorWhite},
		FaceFront:  {Color: colorWhite, Texture: front, DoubleSide: true},
		FaceBack:   {Color: colorWhite, Texture: back, DoubleSide: true},
	}
}
