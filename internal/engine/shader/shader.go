// Package shader compiles the GLSL programs the page renderer draws with.
package shader

import (
	"embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

// Program is a linked GL program with cached uniform locations.
type Program struct {
	ID       uint32
	name     string
	uniforms map[string]int32
}

// Load compiles and links glsl/<name>.vert and glsl/<name>.frag.
func Load(name string) (*Program, error) {
	vert, err := sources.ReadFile("glsl/" + name + ".vert")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	frag, err := sources.ReadFile("glsl/" + name + ".frag")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	id, err := CompileProgram(string(vert), string(frag))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return &Program{ID: id, name: name, uniforms: make(map[string]int32)}, nil
}

// Source returns the embedded source of a shader file, e.g. "page.vert".
func Source(file string) (string, error) {
	b, err := sources.ReadFile("glsl/" + file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Use makes p the current program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Uniform returns the location of name, or -1 if the linker dropped it.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := GetUniform(p.ID, name)
	p.uniforms[name] = loc
	return loc
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// CompileProgram compiles vertex and fragment sources and links them.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compile(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compile(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compile(source string, kind uint32, label string) (uint32, error) {
	s := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csource, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(s, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(s)
		return 0, fmt.Errorf("%s shader: %s", label, msg)
	}
	return s, nil
}

func infoLog(obj uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var n int32
	getiv(obj, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return "(no log)"
	}
	buf := make([]byte, n)
	getLog(obj, n, nil, &buf[0])
	return string(buf[:n-1])
}

// GetUniform returns the uniform location for name, or -1 if inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
