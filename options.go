package flowarc

// Arc generation defaults.
const (
	// DefaultSegments is the number of points sampled along one arc.
	DefaultSegments = 20

	// DefaultExaggeration scales the arch height. With 0.5 the apex sits at
	// half the half-chord length above the midpoint.
	DefaultExaggeration = 0.5
)

// ArcOption configures arc generation.
//
// Example:
//
//	arc, err := flowarc.GenerateArc(a, b,
//	    flowarc.WithSegments(32),
//	    flowarc.WithExaggeration(1),
//	)
type ArcOption func(*arcOptions)

type arcOptions struct {
	segments     int
	exaggeration float64
}

func defaultArcOptions() arcOptions {
	return arcOptions{
		segments:     DefaultSegments,
		exaggeration: DefaultExaggeration,
	}
}

func applyArcOptions(opts []ArcOption) arcOptions {
	o := defaultArcOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSegments sets the number of points per arc. Values below 2 make
// generation fail with ErrTooFewSegments.
func WithSegments(n int) ArcOption {
	return func(o *arcOptions) {
		o.segments = n
	}
}

// WithExaggeration sets the visual height factor applied to the arch.
// It has no physical meaning; 0 flattens arcs onto the map plane.
func WithExaggeration(k float64) ArcOption {
	return func(o *arcOptions) {
		o.exaggeration = k
	}
}
