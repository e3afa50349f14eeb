package flowarc

import "fmt"

// Strip is a contiguous range drawn with one draw call: vertices for line
// strips, indices for indexed triangle lists.
type Strip struct {
	First int
	Count int
}

// VertexData holds flat vertex buffers ready for upload.
//
// Positions holds xyz triples and Colors holds rgba quadruples (0-255), one
// per vertex, in the same order. Indices, when set, lists the vertices of
// an indexed triangle list three at a time. Strips partitions the vertices
// (or the indices, when present) into draw ranges; it is empty for
// unstructured point data.
type VertexData struct {
	Positions []float32
	Colors    []uint8
	Indices   []uint32
	Strips    []Strip
}

// VertexCount returns the number of vertices.
func (d *VertexData) VertexCount() int {
	return len(d.Positions) / 3
}

// ElementCount returns the number of elements a draw of everything covers:
// the index count for indexed data, the vertex count otherwise.
func (d *VertexData) ElementCount() int {
	if len(d.Indices) > 0 {
		return len(d.Indices)
	}
	return d.VertexCount()
}

// Append adds one vertex.
func (d *VertexData) Append(p [3]float32, c RGBA) {
	r, g, b, a := c.Unorm8()
	d.Positions = append(d.Positions, p[0], p[1], p[2])
	d.Colors = append(d.Colors, r, g, b, a)
}

// RenderSpace maps map positions into the renderer's coordinate space.
type RenderSpace interface {
	ToRender(p Vec3) [3]float32
}

// LocalOrigin is a RenderSpace that expresses positions relative to an
// origin. The subtraction happens in float64, so large projected coordinates
// keep sub-meter precision after narrowing to float32.
type LocalOrigin struct {
	Origin Vec3
}

// ToRender implements RenderSpace.
func (o LocalOrigin) ToRender(p Vec3) [3]float32 {
	d := p.Sub(o.Origin)
	return [3]float32{float32(d.X), float32(d.Y), float32(d.Z)}
}

// Batch concatenates arcs of equal length into one point list.
type Batch struct {
	stride int
	points []ArcPoint
}

// NewBatch creates an empty batch for arcs of the given segment count.
func NewBatch(segments int) *Batch {
	return &Batch{stride: segments}
}

// Add appends an arc. The arc must have exactly Stride points.
func (b *Batch) Add(arc Arc) error {
	if len(arc) != b.stride {
		return fmt.Errorf("%w: got %d points, want %d", ErrStrideMismatch, len(arc), b.stride)
	}
	b.points = append(b.points, arc...)
	return nil
}

// Stride returns the number of points per arc.
func (b *Batch) Stride() int {
	return b.stride
}

// Len returns the number of arcs in the batch.
func (b *Batch) Len() int {
	if b.stride == 0 {
		return 0
	}
	return len(b.points) / b.stride
}

// Points returns all points in arc order. The slice is shared with the batch.
func (b *Batch) Points() []ArcPoint {
	return b.points
}

// Arc returns the i-th arc. The slice is shared with the batch.
func (b *Batch) Arc(i int) Arc {
	return b.points[i*b.stride : (i+1)*b.stride]
}

// Strips returns one draw range per arc.
func (b *Batch) Strips() []Strip {
	strips := make([]Strip, b.Len())
	for i := range strips {
		strips[i] = Strip{First: i * b.stride, Count: b.stride}
	}
	return strips
}

// Bounds returns the planar extent of all points.
func (b *Batch) Bounds() (lo, hi Vec2, ok bool) {
	if len(b.points) == 0 {
		return Vec2{}, Vec2{}, false
	}
	lo, hi = b.points[0].Pos.XY(), b.points[0].Pos.XY()
	for _, p := range b.points[1:] {
		lo.X, lo.Y = min(lo.X, p.Pos.X), min(lo.Y, p.Pos.Y)
		hi.X, hi.Y = max(hi.X, p.Pos.X), max(hi.Y, p.Pos.Y)
	}
	return lo, hi, true
}

// Buffers packs the batch into vertex buffers in the given render space.
// A nil space keeps the map coordinates unchanged.
func (b *Batch) Buffers(space RenderSpace) VertexData {
	if space == nil {
		space = LocalOrigin{}
	}
	data := VertexData{
		Positions: make([]float32, 0, len(b.points)*3),
		Colors:    make([]uint8, 0, len(b.points)*4),
		Strips:    b.Strips(),
	}
	for _, p := range b.points {
		data.Append(space.ToRender(p.Pos), p.Color)
	}

	Logger().Debug("flowarc: batch packed",
		"vertices", data.VertexCount(), "strips", len(data.Strips))
	return data
}
