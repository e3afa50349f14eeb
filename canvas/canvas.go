// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/vector"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/mat4"
	"github.com/gogpu/flowarc/render"
)

// Errors returned by Draw.
var (
	ErrNotBound            = errors.New("canvas: draw without bind")
	ErrOutOfRange          = errors.New("canvas: draw range outside vertex data")
	ErrUnsupportedTopology = errors.New("canvas: unsupported topology")
)

// Canvas is a CPU render target with a depth buffer.
//
// Primitives are clipped in clip space before the perspective divide, so
// lines and triangles crossing the eye plane keep their visible part.
// Filled triangles are depth tested and write depth per the pipeline
// layout; lines and points are tested only.
type Canvas struct {
	img       *image.RGBA
	depth     []float32
	lineWidth float32
	pointSize float32

	z    vector.Rasterizer
	mask []uint8

	pipeline *render.Pipeline
	mvp      mat4.Mat4
	data     *flowarc.VertexData
}

// New returns a transparent canvas of the given size.
func New(width, height int, opts ...Option) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Canvas{
		img:       image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:     make([]float32, width*height),
		lineWidth: o.lineWidth,
		pointSize: o.pointSize,
	}
	c.ClearDepth()
	return c
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Clear fills the canvas with col and resets the depth buffer.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
	c.ClearDepth()
}

// ClearDepth resets every depth sample to the far end.
func (c *Canvas) ClearDepth() {
	inf := math32.Inf(1)
	for i := range c.depth {
		c.depth[i] = inf
	}
}

// Depth returns the depth sample at (x, y): normalized device z of the
// nearest triangle drawn there, or +Inf.
func (c *Canvas) Depth(x, y int) float32 {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return math32.Inf(1)
	}
	return c.depth[y*c.Width()+x]
}

// Bind implements render.Target.
func (c *Canvas) Bind(p *render.Pipeline, u render.Uniforms, data *flowarc.VertexData) error {
	if p == nil || data == nil {
		return fmt.Errorf("canvas: bind: nil pipeline or vertex data")
	}
	switch p.Topology() {
	case gputypes.PrimitiveTopologyLineStrip, gputypes.PrimitiveTopologyPointList, gputypes.PrimitiveTopologyTriangleList:
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedTopology, p.Topology())
	}
	c.pipeline = p
	c.mvp = u.MVP()
	c.data = data
	return nil
}

// Draw implements render.Target. For indexed triangle lists first and count
// address the index buffer.
func (c *Canvas) Draw(first, count int) error {
	if c.pipeline == nil {
		return ErrNotBound
	}
	n := c.data.VertexCount()
	indexed := c.pipeline.Topology() == gputypes.PrimitiveTopologyTriangleList && len(c.data.Indices) > 0
	limit := n
	if indexed {
		limit = len(c.data.Indices)
	}
	if first < 0 || count < 0 || first+count > limit {
		return fmt.Errorf("%w: [%d,+%d) of %d", ErrOutOfRange, first, count, limit)
	}

	switch c.pipeline.Topology() {
	case gputypes.PrimitiveTopologyPointList:
		for i := first; i < first+count; i++ {
			c.point(c.vertex(i))
		}
	case gputypes.PrimitiveTopologyLineStrip:
		for i := first; i+1 < first+count; i++ {
			col := blend(c.vertexColor(i), c.vertexColor(i+1))
			c.segment(c.vertex(i), c.vertex(i+1), col)
		}
	case gputypes.PrimitiveTopologyTriangleList:
		for t := first; t+2 < first+count; t += 3 {
			var tri [3]vertex
			for k := range tri {
				i := t + k
				if indexed {
					i = int(c.data.Indices[i])
					if i >= n {
						return fmt.Errorf("%w: index %d of %d vertices", ErrOutOfRange, i, n)
					}
				}
				tri[k] = c.vertex(i)
			}
			c.triangle(tri)
		}
	}
	return nil
}

// vertex returns vertex i in clip space.
func (c *Canvas) vertex(i int) vertex {
	pos := c.data.Positions[i*3 : i*3+3]
	col := c.data.Colors[i*4 : i*4+4]
	return vertex{
		clip: c.mvp.TransformPoint(mat4.Vec3{pos[0], pos[1], pos[2]}),
		col:  [4]float32{float32(col[0]), float32(col[1]), float32(col[2]), float32(col[3])},
	}
}

func (c *Canvas) vertexColor(i int) color.NRGBA {
	p := c.data.Colors[i*4 : i*4+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func (c *Canvas) point(v vertex) {
	if !v.inside() {
		return
	}
	p := c.toScreen(v)
	h := c.pointSize / 2
	r := image.Rect(
		int(math32.Floor(p.x-h)), int(math32.Floor(p.y-h)),
		int(math32.Ceil(p.x+h)), int(math32.Ceil(p.y+h)),
	).Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.depthTest(x, y, p.z) {
				c.blendPixel(x, y, v.col, 1)
			}
		}
	}
}

// segment strokes a-b as a quad lineWidth pixels wide.
func (c *Canvas) segment(a, b vertex, col color.NRGBA) {
	a, b, ok := clipSegment(a, b)
	if !ok {
		return
	}
	sa, sb := c.toScreen(a), c.toScreen(b)

	d := vector2{sb.x - sa.x, sb.y - sa.y}
	l := d.length()
	if l == 0 {
		return
	}
	h := c.lineWidth / 2
	n := vector2{X: -d.Y / l * h, Y: d.X / l * h}
	pa, pb := vector2{sa.x, sa.y}, vector2{sb.x, sb.y}
	quad := [4]vector2{pa.add(n), pb.add(n), pb.sub(n), pa.sub(n)}

	r, mask := c.coverage(quad[:])
	if r.Empty() {
		return
	}
	fill := [4]float32{float32(col.R), float32(col.G), float32(col.B), float32(col.A)}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := mask[(y-r.Min.Y)*r.Dx()+x-r.Min.X]
			if cov == 0 {
				continue
			}
			px := vector2{float32(x) + 0.5, float32(y) + 0.5}.sub(pa)
			t := (px.X*d.X + px.Y*d.Y) / (l * l)
			t = math32.Max(0, math32.Min(1, t))
			if c.depthTest(x, y, sa.z+t*(sb.z-sa.z)) {
				c.blendPixel(x, y, fill, float32(cov)/255)
			}
		}
	}
}

// triangle fills a clipped triangle. Pixels whose center lies inside are
// covered; colors are interpolated perspective-correct.
func (c *Canvas) triangle(tri [3]vertex) {
	poly := clipPolygon(tri[:])
	if len(poly) < 3 {
		return
	}
	s := make([]screenVertex, len(poly))
	for i, v := range poly {
		s[i] = c.toScreen(v)
	}
	for i := 1; i+1 < len(s); i++ {
		c.fillTriangle(s[0], s[i], s[i+1])
	}
}

func (c *Canvas) fillTriangle(a, b, v screenVertex) {
	area := edge(a, b, v.x, v.y)
	if math32.Abs(area) < 1e-9 {
		return
	}
	pts := [3]vector2{{a.x, a.y}, {b.x, b.y}, {v.x, v.y}}
	r, mask := c.coverage(pts[:])
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask[(y-r.Min.Y)*r.Dx()+x-r.Min.X] < 128 {
				continue
			}
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(b, v, px, py) / area
			w1 := edge(v, a, px, py) / area
			w2 := 1 - w0 - w1
			z := w0*a.z + w1*b.z + w2*v.z
			if !c.depthTest(x, y, z) {
				continue
			}
			if c.pipeline.Layout.DepthWrite {
				c.depth[y*c.Width()+x] = z
			}
			iw := w0*a.invW + w1*b.invW + w2*v.invW
			var col [4]float32
			for k := range col {
				col[k] = (w0*a.colW[k] + w1*b.colW[k] + w2*v.colW[k]) / iw
			}
			c.blendPixel(x, y, col, 1)
		}
	}
}

// edge returns twice the signed area of (a, b, p).
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// coverage rasterizes the closed polygon pts and returns its pixel bounds
// with one coverage byte per pixel, row by row.
func (c *Canvas) coverage(pts []vector2) (image.Rectangle, []uint8) {
	r := boundsOf(pts, c.img.Rect)
	if r.Empty() {
		return r, nil
	}
	w, h := r.Dx(), r.Dy()
	if cap(c.mask) < w*h {
		c.mask = make([]uint8, w*h)
	}
	pix := c.mask[:w*h]
	clear(pix)
	dst := &image.Alpha{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}

	off := vector2{X: float32(r.Min.X), Y: float32(r.Min.Y)}
	c.z.Reset(w, h)
	c.z.MoveTo(pts[0].X-off.X, pts[0].Y-off.Y)
	for _, p := range pts[1:] {
		c.z.LineTo(p.X-off.X, p.Y-off.Y)
	}
	c.z.ClosePath()
	c.z.Draw(dst, dst.Rect, image.Opaque, image.Point{})
	return r, pix
}

// depthTest compares z against the stored sample with the pipeline's
// compare function.
func (c *Canvas) depthTest(x, y int, z float32) bool {
	d := c.depth[y*c.Width()+x]
	switch c.pipeline.Layout.DepthCompare {
	case gputypes.CompareFunctionAlways, gputypes.CompareFunctionUndefined:
		return true
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLessEqual:
		return z <= d
	case gputypes.CompareFunctionGreater:
		return z > d
	case gputypes.CompareFunctionGreaterEqual:
		return z >= d
	case gputypes.CompareFunctionEqual:
		return z == d
	case gputypes.CompareFunctionNotEqual:
		return z != d
	default:
		return z < d
	}
}

// blendPixel composites a straight-alpha color scaled by coverage over the
// premultiplied pixel at (x, y).
func (c *Canvas) blendPixel(x, y int, col [4]float32, cov float32) {
	a := col[3] / 255 * cov
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	for k := 0; k < 3; k++ {
		p[k] = uint8(math32.Min(255, col[k]*a+float32(p[k])*(1-a)+0.5))
	}
	p[3] = uint8(math32.Min(255, 255*a+float32(p[3])*(1-a)+0.5))
}

// blend averages two straight-alpha colors.
func blend(a, b color.NRGBA) color.NRGBA {
	avg := func(x, y uint8) uint8 { return uint8((uint16(x) + uint16(y) + 1) / 2) }
	return color.NRGBA{R: avg(a.R, b.R), G: avg(a.G, b.G), B: avg(a.B, b.B), A: avg(a.A, b.A)}
}

type vector2 struct{ X, Y float32 }

func (v vector2) add(w vector2) vector2 { return vector2{v.X + w.X, v.Y + w.Y} }
func (v vector2) sub(w vector2) vector2 { return vector2{v.X - w.X, v.Y - w.Y} }
func (v vector2) length() float32       { return math32.Hypot(v.X, v.Y) }

// boundsOf returns the pixel rectangle covering pts, clipped to clip.
func boundsOf(pts []vector2, clip image.Rectangle) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math32.Min(minX, p.X), math32.Max(maxX, p.X)
		minY, maxY = math32.Min(minY, p.Y), math32.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math32.Floor(minX)), int(math32.Floor(minY)),
		int(math32.Ceil(maxX)), int(math32.Ceil(maxY)),
	).Intersect(clip)
}

var _ render.Target = (*Canvas)(nil)
