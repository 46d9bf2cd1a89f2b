// Package renderer draws skinned page meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/engine/camera"
	"github.com/Faultbox/castle-book/internal/engine/lighting"
	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/internal/engine/scene"
	"github.com/Faultbox/castle-book/internal/engine/shader"
	"github.com/Faultbox/castle-book/internal/engine/shadow"
	"github.com/Faultbox/castle-book/internal/engine/texture"
	"github.com/Faultbox/castle-book/internal/logger"
	"github.com/Faultbox/castle-book/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width            int
	Height           int
	Shadows          bool
	ShadowResolution int32
}

// gpuGeometry is one uploaded page geometry, shared by all meshes using it.
type gpuGeometry struct {
	vao, vbo, ebo uint32
}

// Renderer handles all OpenGL rendering.
// IMPORTANT: create it only after the GL context exists.
type Renderer struct {
	config Config

	pageProgram  *shader.Program
	depthProgram *shader.Program
	shadowMap    *shadow.Map

	geometries map[*page.Geometry]*gpuGeometry
	textures   map[texture.Handle]struct{}
	skin       []math.Mat4
}

// New initializes OpenGL and compiles the page programs.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{
		config:     cfg,
		geometries: make(map[*page.Geometry]*gpuGeometry),
		textures:   make(map[texture.Handle]struct{}),
	}

	var err error
	if r.pageProgram, err = shader.Load("page"); err != nil {
		return nil, err
	}
	if r.depthProgram, err = shader.Load("depth"); err != nil {
		r.pageProgram.Delete()
		return nil, err
	}

	if cfg.Shadows {
		if r.shadowMap, err = shadow.NewMap(cfg.ShadowResolution); err != nil {
			logger.Warn("shadows disabled", zap.Error(err))
			r.config.Shadows = false
		}
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.CullFace(gl.BACK)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Upload creates a mipmapped texture from img. Rows must already be
// bottom-up.
func (r *Renderer) Upload(img *image.RGBA) (texture.Handle, error) {
	b := img.Bounds()
	if b.Empty() {
		return texture.None, fmt.Errorf("upload: empty image")
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	h := texture.Handle(tex)
	r.textures[h] = struct{}{}
	return h, nil
}

// Delete releases a texture created by Upload.
func (r *Renderer) Delete(h texture.Handle) {
	if _, ok := r.textures[h]; !ok {
		return
	}
	tex := uint32(h)
	gl.DeleteTextures(1, &tex)
	delete(r.textures, h)
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Render draws every mesh in sc.
func (r *Renderer) Render(sc *scene.Scene, cam *camera.Perspective, rig lighting.Rig) {
	lightViewProj := math.Identity()
	shadows := r.config.Shadows && rig.Sun.CastShadows
	if shadows {
		if lo, hi, ok := sc.Bounds(); ok {
			lightViewProj = shadow.LightMatrix(rig.Sun.Direction(), shadow.AABB{Min: lo, Max: hi})
			r.depthPass(sc, lightViewProj)
		} else {
			shadows = false
		}
	}

	bg := sc.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	p := r.pageProgram
	p.Use()

	viewProj := cam.ViewProjection()
	gl.UniformMatrix4fv(p.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uLightViewProj"), 1, false, lightViewProj.Ptr())

	dir := rig.Sun.Direction()
	sun := rig.Sun.Radiance()
	amb := rig.Ambient.Radiance()
	gl.Uniform3f(p.Uniform("uLightDir"), dir[0], dir[1], dir[2])
	gl.Uniform3f(p.Uniform("uLightColor"), sun[0], sun[1], sun[2])
	gl.Uniform3f(p.Uniform("uAmbient"), amb[0], amb[1], amb[2])
	gl.Uniform1i(p.Uniform("uTexture"), 0)
	gl.Uniform1i(p.Uniform("uShadowMap"), 1)
	gl.Uniform1f(p.Uniform("uShadowBias"), rig.Sun.ShadowBias)
	if shadows {
		gl.Uniform1i(p.Uniform("uShadows"), 1)
		r.shadowMap.BindTexture(gl.TEXTURE1)
	} else {
		gl.Uniform1i(p.Uniform("uShadows"), 0)
	}

	gl.ActiveTexture(gl.TEXTURE0)
	for _, m := range sc.Meshes() {
		r.bindMesh(p, m)
		for f, grp := range m.Geometry.Groups {
			mat := m.Materials[f]
			if mat.DoubleSide {
				gl.Disable(gl.CULL_FACE)
			} else {
				gl.Enable(gl.CULL_FACE)
			}
			gl.Uniform3f(p.Uniform("uColor"), mat.Color[0], mat.Color[1], mat.Color[2])
			if mat.Textured() {
				gl.Uniform1i(p.Uniform("uHasTexture"), 1)
				gl.BindTexture(gl.TEXTURE_2D, uint32(mat.Texture))
			} else {
				gl.Uniform1i(p.Uniform("uHasTexture"), 0)
			}
			gl.DrawElementsWithOffset(gl.TRIANGLES, grp.IndexCount, gl.UNSIGNED_INT, uintptr(grp.StartIndex*4))
		}
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.CULL_FACE)
}

func (r *Renderer) depthPass(sc *scene.Scene, lightViewProj math.Mat4) {
	r.shadowMap.Begin()
	p := r.depthProgram
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uLightViewProj"), 1, false, lightViewProj.Ptr())
	for _, m := range sc.Meshes() {
		r.bindMesh(p, m)
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(len(m.Geometry.Indices)), gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	r.shadowMap.End()
}

// bindMesh binds the mesh VAO and uploads its model and joint matrices.
func (r *Renderer) bindMesh(p *shader.Program, m *page.Mesh) {
	g := r.geometry(m.Geometry)
	gl.BindVertexArray(g.vao)

	model := m.ModelMatrix()
	gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, model.Ptr())

	r.skin = m.SkinMatrices(r.skin)
	gl.UniformMatrix4fv(p.Uniform("uJoints"), int32(len(r.skin)), false, r.skin[0].Ptr())
}

// geometry uploads a shared page geometry on first use.
func (r *Renderer) geometry(pg *page.Geometry) *gpuGeometry {
	if g, ok := r.geometries[pg]; ok {
		return g
	}

	g := &gpuGeometry{}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(pg.Vertices)*int(page.VertexStride), unsafe.Pointer(&pg.Vertices[0]), gl.STATIC_DRAW)

	stride := page.VertexStride
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, page.OffsetPosition)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, page.OffsetNormal)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, page.OffsetTexCoord)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribIPointerWithOffset(3, 2, gl.UNSIGNED_SHORT, stride, page.OffsetJoints)
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointerWithOffset(4, 2, gl.FLOAT, false, stride, page.OffsetWeights)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(pg.Indices)*4, unsafe.Pointer(&pg.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	r.geometries[pg] = g
	logger.Debug("page geometry uploaded",
		zap.Int("vertices", len(pg.Vertices)),
		zap.Int("indices", len(pg.Indices)),
	)
	return g
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// Close releases every GPU resource the renderer created.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for pg, g := range r.geometries {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
		delete(r.geometries, pg)
	}
	for h := range r.textures {
		r.Delete(h)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	r.pageProgram.Delete()
	r.depthProgram.Delete()
}
