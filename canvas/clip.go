// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

import "github.com/gogpu/flowarc/mat4"

// clipEpsilon is the smallest w a clipped vertex keeps.
const clipEpsilon = 1e-5

// maxNDC is the guard band: primitives are clipped to |x|, |y| <= maxNDC
// in normalized device coordinates, well outside the viewport.
const maxNDC = 8

// vertex is a clip-space position with a straight-alpha color in 0-255.
type vertex struct {
	clip mat4.Vec4
	col  [4]float32
}

func (v vertex) lerp(w vertex, t float32) vertex {
	var out vertex
	for k := 0; k < 4; k++ {
		out.clip[k] = v.clip[k] + t*(w.clip[k]-v.clip[k])
		out.col[k] = v.col[k] + t*(w.col[k]-v.col[k])
	}
	return out
}

// distances returns the signed distance of v to each clip plane; a vertex
// is inside when all of them are non-negative.
func (v vertex) distances() [5]float32 {
	x, y, w := v.clip[0], v.clip[1], v.clip[3]
	return [5]float32{
		w - clipEpsilon,
		maxNDC*w - x,
		maxNDC*w + x,
		maxNDC*w - y,
		maxNDC*w + y,
	}
}

func (v vertex) inside() bool {
	for _, d := range v.distances() {
		if d < 0 {
			return false
		}
	}
	return true
}

// clipSegment trims a-b to the clip volume.
func clipSegment(a, b vertex) (vertex, vertex, bool) {
	da, db := a.distances(), b.distances()
	t0, t1 := float32(0), float32(1)
	for i := range da {
		switch {
		case da[i] < 0 && db[i] < 0:
			return a, b, false
		case da[i] < 0:
			t0 = max(t0, da[i]/(da[i]-db[i]))
		case db[i] < 0:
			t1 = min(t1, da[i]/(da[i]-db[i]))
		}
	}
	if t0 > t1 {
		return a, b, false
	}
	return a.lerp(b, t0), a.lerp(b, t1), true
}

// clipPolygon clips a convex polygon to the clip volume one plane at a time.
func clipPolygon(poly []vertex) []vertex {
	out := append([]vertex(nil), poly...)
	for plane := 0; plane < 5 && len(out) > 0; plane++ {
		in := out
		out = make([]vertex, 0, len(in)+1)
		for i, cur := range in {
			prev := in[(i+len(in)-1)%len(in)]
			dc, dp := cur.distances()[plane], prev.distances()[plane]
			if dc >= 0 {
				if dp < 0 {
					out = append(out, prev.lerp(cur, dp/(dp-dc)))
				}
				out = append(out, cur)
			} else if dp >= 0 {
				out = append(out, prev.lerp(cur, dp/(dp-dc)))
			}
		}
	}
	return out
}

// screenVertex is a vertex after the perspective divide, in pixels.
type screenVertex struct {
	x, y, z float32
	invW    float32
	colW    [4]float32
}

func (c *Canvas) toScreen(v vertex) screenVertex {
	invW := 1 / v.clip[3]
	s := screenVertex{
		x:    (v.clip[0]*invW + 1) / 2 * float32(c.Width()),
		y:    (1 - v.clip[1]*invW) / 2 * float32(c.Height()),
		z:    v.clip[2] * invW,
		invW: invW,
	}
	for k := range s.colW {
		s.colW[k] = v.col[k] * invW
	}
	return s
}
