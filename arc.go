package flowarc

import "log/slog"

// Endpoint is one end of an arc: a planar position and the color the arc
// takes at that end.
type Endpoint struct {
	Pos   Vec2
	Color RGBA
}

// Pair is an origin-destination pair of endpoints.
type Pair struct {
	Start, End Endpoint
}

// ArcPoint is one sample along an arc.
type ArcPoint struct {
	Pos   Vec3
	Color RGBA
}

// Arc is an ordered sequence of points from the start endpoint to the end
// endpoint.
type Arc []ArcPoint

// GenerateArc samples a symmetric parabolic arch between start and end.
//
// The returned arc has exactly the configured number of points (see
// [WithSegments]). Point i sits at parameter t = i/(n-1): its planar position
// is the straight interpolation between the endpoints and its color is the
// per-channel blend of the endpoint colors. The elevation is
//
//	z = k * (d - r²/d)
//
// where d is the half-chord length, r the distance of the planar position
// from the chord midpoint and k the exaggeration (see [WithExaggeration]).
// Both ends have z = 0 and the apex k*d sits above the midpoint.
//
// Coincident endpoints produce a flat arc at the endpoint. NaN coordinates
// are not rejected and propagate into the output.
func GenerateArc(start, end Endpoint, opts ...ArcOption) (Arc, error) {
	o := applyArcOptions(opts)
	if o.segments < 2 {
		return nil, ErrTooFewSegments
	}

	arc := make(Arc, o.segments)
	fillArc(arc, start, end, o.exaggeration)
	return arc, nil
}

// fillArc writes len(dst) samples of the arc between start and end.
func fillArc(dst Arc, start, end Endpoint, k float64) {
	n := float64(len(dst) - 1)
	xs, ys := start.Pos.X, start.Pos.Y
	xe, ye := end.Pos.X, end.Pos.Y

	// Half chord. With the endpoints expressed relative to the midpoint,
	// r = d·|2t-1| and d - r²/d = 4·d·t·(1-t).
	d := end.Pos.Sub(start.Pos).Length() / 2
	if d == 0 {
		Logger().Debug("flowarc: degenerate chord, flat arc",
			slog.Float64("x", xs), slog.Float64("y", ys))
	}

	for i := range dst {
		u := float64(i) / n
		v := float64(len(dst)-1-i) / n
		dst[i] = ArcPoint{
			Pos: Vec3{
				X: lerp(xs, xe, u, v),
				Y: lerp(ys, ye, u, v),
				Z: 4 * k * d * (u * v),
			},
			Color: start.Color.blend(end.Color, u, v),
		}
	}
}

// lerp interpolates from a to b, anchored at whichever end is nearer so that
// both ends are reproduced exactly.
func lerp(a, b, u, v float64) float64 {
	if u <= 0.5 {
		return a + (b-a)*u
	}
	return b - (b-a)*v
}

// GenerateArcs generates one arc per pair and collects them in a Batch.
// Pairs are processed in order; the first error aborts generation.
func GenerateArcs(pairs []Pair, opts ...ArcOption) (*Batch, error) {
	o := applyArcOptions(opts)
	if o.segments < 2 {
		return nil, ErrTooFewSegments
	}

	b := NewBatch(o.segments)
	b.points = make([]ArcPoint, len(pairs)*o.segments)
	for i, p := range pairs {
		fillArc(b.points[i*o.segments:(i+1)*o.segments], p.Start, p.End, o.exaggeration)
	}

	Logger().Debug("flowarc: arcs generated",
		slog.Int("arcs", len(pairs)), slog.Int("segments", o.segments))
	return b, nil
}
