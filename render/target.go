// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/mat4"
	"github.com/gogpu/flowarc/shader"
)

// UniformSize is the byte size of the uniform block: two mat4x4<f32>.
const UniformSize = 2 * 16 * 4

// Uniforms mirrors the shader's uniform block.
type Uniforms struct {
	Projection mat4.Mat4
	ModelView  mat4.Mat4
}

// MVP returns Projection · ModelView.
func (u Uniforms) MVP() mat4.Mat4 {
	return u.Projection.Mul(u.ModelView)
}

// Bytes encodes the block for a uniform buffer upload (little-endian,
// column-major).
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, UniformSize)
	for i, v := range u.Projection {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range u.ModelView {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}

// Pipeline is the compiled program plus the fixed-function state needed to
// draw with it.
type Pipeline struct {
	Program     *shader.Program
	Layout      Layout
	ColorFormat gputypes.TextureFormat
}

// Topology returns the pipeline's primitive topology.
func (p *Pipeline) Topology() gputypes.PrimitiveTopology {
	return p.Layout.Primitive.Topology
}

// Target receives draw calls. Bind selects the pipeline, uniforms and vertex
// buffers for the following Draw calls; Draw issues count elements starting
// at first. Elements are indices for indexed data and vertices otherwise.
type Target interface {
	Bind(p *Pipeline, u Uniforms, data *flowarc.VertexData) error
	Draw(first, count int) error
}
