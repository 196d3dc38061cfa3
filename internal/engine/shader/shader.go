// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Build errors. The driver's info log is appended to the message.
var (
	ErrCompile        = errors.New("shader compile failed")
	ErrLink           = errors.New("program link failed")
	ErrMissingUniform = errors.New("uniform not found")
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Sources may omit the trailing NUL.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, trimLog(log))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	if !strings.HasSuffix(source, "\x00") {
		source += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s: %w: %s", name, ErrCompile, trimLog(log))
	}

	return shader, nil
}

func trimLog(log []byte) string {
	return strings.TrimRight(string(log), "\x00\n ")
}

// GetUniform returns the uniform location for the given name.
// Returns -1 if the uniform is not found or was optimized out.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Uniforms looks up the uniform locations of one program and remembers
// the first required uniform that is missing.
type Uniforms struct {
	program uint32
	locate  func(program uint32, name string) int32
	err     error
}

// NewUniforms starts a lookup against program.
func NewUniforms(program uint32) *Uniforms {
	return &Uniforms{program: program, locate: GetUniform}
}

// Optional returns the location of name, or -1 if the driver optimized it
// out. Setting a uniform at -1 is a no-op in GL.
func (u *Uniforms) Optional(name string) int32 {
	return u.locate(u.program, name)
}

// Required returns the location of name and records an error if it is
// missing.
func (u *Uniforms) Required(name string) int32 {
	loc := u.locate(u.program, name)
	if loc < 0 && u.err == nil {
		u.err = fmt.Errorf("%w: %q in program %d", ErrMissingUniform, name, u.program)
	}
	return loc
}

// Err returns the first missing required uniform, if any.
func (u *Uniforms) Err() error {
	return u.err
}
