// Package shader holds the WGSL programs used to draw flow arcs and compiles
// them for the available backends: SPIR-V for Vulkan-class devices and
// GLSL ES 3.00 for WebGL2 hosts.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"

	"github.com/gogpu/flowarc"
)

// Entry points shared by every program in this package.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// FlowSource is the WGSL source of the flow shader. It takes a float32x3
// position at location 0, a unorm8x4 color at location 1 and a uniform
// block with the projection and model-view matrices at group 0 binding 0.
//
//go:embed flow.wgsl
var FlowSource string

// ErrEmptySource is returned when compiling an empty program.
var ErrEmptySource = errors.New("shader: empty source")

// CompileError reports which compilation stage failed.
type CompileError struct {
	Program string
	Stage   string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader: %s: %s: %v", e.Program, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Program is a compiled shader program.
type Program struct {
	Name  string
	WGSL  string
	SPIRV []uint32
}

// Compile validates the WGSL source and compiles it to SPIR-V.
func Compile(name, source string) (*Program, error) {
	if source == "" {
		return nil, &CompileError{Program: name, Stage: "source", Err: ErrEmptySource}
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &CompileError{Program: name, Stage: "spirv", Err: err}
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	flowarc.Logger().Info("shader: compiled",
		slog.String("program", name), slog.Int("spirv_words", len(words)))
	return &Program{Name: name, WGSL: source, SPIRV: words}, nil
}

// CompileFlow compiles the built-in flow shader.
func CompileFlow() (*Program, error) {
	return Compile("flow", FlowSource)
}

// WebGL is a vertex/fragment shader pair in GLSL ES 3.00.
type WebGL struct {
	Vertex   string
	Fragment string
}

// TranslateWebGL converts the program into a GLSL ES 3.00 shader pair
// suitable for a WebGL2 context.
func (p *Program) TranslateWebGL() (*WebGL, error) {
	ast, err := naga.Parse(p.WGSL)
	if err != nil {
		return nil, &CompileError{Program: p.Name, Stage: "parse", Err: err}
	}
	module, err := naga.LowerWithSource(ast, p.WGSL)
	if err != nil {
		return nil, &CompileError{Program: p.Name, Stage: "lower", Err: err}
	}

	out := &WebGL{}
	for _, stage := range []struct {
		entry string
		dst   *string
	}{
		{VertexEntry, &out.Vertex},
		{FragmentEntry, &out.Fragment},
	} {
		opts := glsl.Options{
			LangVersion:        glsl.VersionES300,
			EntryPoint:         stage.entry,
			ForceHighPrecision: true,
		}
		src, _, err := glsl.Compile(module, opts)
		if err != nil {
			return nil, &CompileError{Program: p.Name, Stage: "glsl " + stage.entry, Err: err}
		}
		*stage.dst = src
	}
	return out, nil
}
