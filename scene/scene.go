// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scene

import (
	"math/rand/v2"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/geo"
)

// RandomPoints returns n points uniformly spread over the [-1, 1] clip-space
// cube, each with a random opaque color.
func RandomPoints(rng *rand.Rand, n int) flowarc.VertexData {
	var d flowarc.VertexData
	for i := 0; i < n; i++ {
		p := [3]float32{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		d.Append(p, flowarc.RGB(rng.Float64(), rng.Float64(), rng.Float64()))
	}
	return d
}

// AxisMarkers returns the three coordinate axes as two-vertex strips running
// from -length to +length. Each axis is red, green or blue, bright on the
// positive end and half intensity on the negative end.
func AxisMarkers(length float32) flowarc.VertexData {
	var d flowarc.VertexData
	axes := []struct {
		dir            [3]float32
		bright, shaded flowarc.RGBA
	}{
		{[3]float32{1, 0, 0}, flowarc.Red, flowarc.RGB(0.5, 0, 0)},
		{[3]float32{0, 1, 0}, flowarc.Green, flowarc.RGB(0, 0.5, 0)},
		{[3]float32{0, 0, 1}, flowarc.Blue, flowarc.RGB(0, 0, 0.5)},
	}
	for _, a := range axes {
		first := d.VertexCount()
		d.Append([3]float32{a.dir[0] * length, a.dir[1] * length, a.dir[2] * length}, a.bright)
		d.Append([3]float32{-a.dir[0] * length, -a.dir[1] * length, -a.dir[2] * length}, a.shaded)
		d.Strips = append(d.Strips, flowarc.Strip{First: first, Count: 2})
	}
	return d
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Positions []float32
	Colors    []uint8
	Indices   []uint16
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// VertexData returns the mesh as one indexed triangle list.
func (m *Mesh) VertexData() flowarc.VertexData {
	d := flowarc.VertexData{
		Positions: append([]float32(nil), m.Positions...),
		Colors:    append([]uint8(nil), m.Colors...),
		Indices:   make([]uint32, len(m.Indices)),
	}
	for i, idx := range m.Indices {
		d.Indices[i] = uint32(idx)
	}
	return d
}

// Instances places one copy of m at each center and expresses the result in
// space. Every copy gets its own strip of indices. A nil space keeps the
// centers' coordinates.
func Instances(m Mesh, centers []flowarc.Vec3, space flowarc.RenderSpace) flowarc.VertexData {
	if space == nil {
		space = flowarc.LocalOrigin{}
	}
	nv := m.VertexCount()
	d := flowarc.VertexData{
		Positions: make([]float32, 0, len(centers)*len(m.Positions)),
		Colors:    make([]uint8, 0, len(centers)*len(m.Colors)),
		Indices:   make([]uint32, 0, len(centers)*len(m.Indices)),
	}
	for i, c := range centers {
		for v := 0; v < nv; v++ {
			p := flowarc.V3(
				c.X+float64(m.Positions[v*3]),
				c.Y+float64(m.Positions[v*3+1]),
				c.Z+float64(m.Positions[v*3+2]),
			)
			q := m.Colors[v*4 : v*4+4]
			d.Append(space.ToRender(p), flowarc.RGBA8(q[0], q[1], q[2], q[3]))
		}
		first := len(d.Indices)
		for _, idx := range m.Indices {
			d.Indices = append(d.Indices, uint32(i*nv)+uint32(idx))
		}
		d.Strips = append(d.Strips, flowarc.Strip{First: first, Count: len(m.Indices)})
	}
	return d
}

// Cubes places a cube of the given edge length at each longitude/latitude
// pair (X is longitude), resting on the plane z = 0 in Web Mercator meters.
func Cubes(size float32, lngLats []flowarc.Vec2, space flowarc.RenderSpace) flowarc.VertexData {
	centers := make([]flowarc.Vec3, len(lngLats))
	for i, ll := range lngLats {
		p := geo.Project(ll.X, ll.Y)
		centers[i] = flowarc.V3(p.X, p.Y, float64(size)/2)
	}
	return Instances(Cube(size), centers, space)
}

// Wireframe returns every triangle as a closed four-vertex line strip.
func (m *Mesh) Wireframe() flowarc.VertexData {
	var d flowarc.VertexData
	for t := 0; t+2 < len(m.Indices); t += 3 {
		first := d.VertexCount()
		for _, k := range [4]int{0, 1, 2, 0} {
			i := int(m.Indices[t+k])
			c := m.Colors[i*4 : i*4+4]
			d.Append(
				[3]float32{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]},
				flowarc.RGBA8(c[0], c[1], c[2], c[3]),
			)
		}
		d.Strips = append(d.Strips, flowarc.Strip{First: first, Count: 4})
	}
	return d
}

// Cube returns an axis-aligned cube of the given edge length centered on the
// origin: 8 corners, red on the -Y face side and blue on +Y, with 12
// counter-clockwise triangles.
func Cube(size float32) Mesh {
	k := size / 2
	return Mesh{
		Positions: []float32{
			k, -k, k,
			k, k, k,
			-k, k, k,
			-k, -k, k,
			k, -k, -k,
			k, k, -k,
			-k, k, -k,
			-k, -k, -k,
		},
		Colors: []uint8{
			255, 0, 0, 255,
			0, 0, 255, 255,
			0, 0, 255, 255,
			255, 0, 0, 255,
			255, 0, 0, 255,
			0, 0, 255, 255,
			0, 0, 255, 255,
			255, 0, 0, 255,
		},
		Indices: []uint16{
			0, 1, 2,
			0, 2, 3,
			0, 5, 1,
			0, 4, 5,
			0, 7, 4,
			0, 3, 7,
			4, 6, 5,
			4, 7, 6,
			1, 5, 6,
			1, 6, 2,
			3, 6, 7,
			3, 2, 6,
		},
	}
}
