// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flowarc"
)

// Vertex attribute formats of the flow pipeline.
const (
	PositionFormat = gputypes.VertexFormatFloat32x3
	ColorFormat    = gputypes.VertexFormatUnorm8x4
)

// Shader locations of the vertex attributes.
const (
	PositionLocation = 0
	ColorLocation    = 1
)

// ErrInvalidVertexData is returned for buffers that do not match the layout.
var ErrInvalidVertexData = errors.New("render: invalid vertex data")

// DepthFormat is the format of the depth attachment.
const DepthFormat = gputypes.TextureFormatDepth32Float

// IndexFormat is the format of the index buffer.
const IndexFormat = gputypes.IndexFormatUint32

// Layout describes how vertex data is fed to the flow pipeline: one buffer of
// positions and one of colors, both stepped per vertex.
//
// Every primitive is depth tested with DepthCompare. Only filled triangles
// write depth, so translucent lines and points never hide each other.
type Layout struct {
	Buffers      []gputypes.VertexBufferLayout
	Primitive    gputypes.PrimitiveState
	Blend        gputypes.BlendState
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction
}

// FlowLayout returns the layout for the given topology. Colors are blended
// with straight alpha.
func FlowLayout(topology gputypes.PrimitiveTopology) Layout {
	return Layout{
		Buffers: []gputypes.VertexBufferLayout{
			{
				ArrayStride: PositionFormat.Size(),
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: PositionFormat, Offset: 0, ShaderLocation: PositionLocation},
				},
			},
			{
				ArrayStride: ColorFormat.Size(),
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: ColorFormat, Offset: 0, ShaderLocation: ColorLocation},
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Blend:        gputypes.BlendStateAlpha(),
		DepthWrite:   topology == gputypes.PrimitiveTopologyTriangleList,
		DepthCompare: gputypes.CompareFunctionLess,
	}
}

// Validate checks that data is consistent with the layout.
func (l Layout) Validate(data *flowarc.VertexData) error {
	if len(data.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of 3", ErrInvalidVertexData, len(data.Positions))
	}
	n := data.VertexCount()
	if len(data.Colors) != n*4 {
		return fmt.Errorf("%w: %d color bytes for %d vertices", ErrInvalidVertexData, len(data.Colors), n)
	}
	if len(data.Indices) > 0 {
		if l.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
			return fmt.Errorf("%w: indices need a triangle list, have %v", ErrInvalidVertexData, l.Primitive.Topology)
		}
		if len(data.Indices)%3 != 0 {
			return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidVertexData, len(data.Indices))
		}
		for i, idx := range data.Indices {
			if int(idx) >= n {
				return fmt.Errorf("%w: index %d = %d outside %d vertices", ErrInvalidVertexData, i, idx, n)
			}
		}
	}
	elems := data.ElementCount()
	for i, s := range data.Strips {
		if s.First < 0 || s.Count < 0 || s.First+s.Count > elems {
			return fmt.Errorf("%w: strip %d [%d,+%d) outside %d elements", ErrInvalidVertexData, i, s.First, s.Count, elems)
		}
	}
	return nil
}
