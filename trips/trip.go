package trips

import (
	"io"
	"log/slog"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/geo"
)

// Trip is one origin-destination record in geographic degrees.
type Trip struct {
	StartLng, StartLat float64
	EndLng, EndLat     float64
}

// Pair projects the trip into Web Mercator endpoints with the given colors.
func (t Trip) Pair(startColor, endColor flowarc.RGBA) flowarc.Pair {
	return flowarc.Pair{
		Start: flowarc.Endpoint{Pos: geo.Project(t.StartLng, t.StartLat), Color: startColor},
		End:   flowarc.Endpoint{Pos: geo.Project(t.EndLng, t.EndLat), Color: endColor},
	}
}

// TripSet is the result of reading a trip table.
type TripSet struct {
	Trips []Trip
	// Skipped lists rows that were rejected.
	Skipped []RowError
}

// Pairs projects every trip.
func (s *TripSet) Pairs(startColor, endColor flowarc.RGBA) []flowarc.Pair {
	pairs := make([]flowarc.Pair, len(s.Trips))
	for i, t := range s.Trips {
		pairs[i] = t.Pair(startColor, endColor)
	}
	return pairs
}

// Bounds returns the projected extent of all trip endpoints.
func (s *TripSet) Bounds() geo.Bounds {
	var b geo.Bounds
	for _, t := range s.Trips {
		b.Extend(geo.Project(t.StartLng, t.StartLat))
		b.Extend(geo.Project(t.EndLng, t.EndLat))
	}
	return b
}

var tripColumns = []column{
	{name: "start_lng", aliases: []string{"start_lon", "start_longitude", "start station longitude"}},
	{name: "start_lat", aliases: []string{"start_latitude", "start station latitude"}},
	{name: "end_lng", aliases: []string{"end_lon", "end_longitude", "end station longitude"}},
	{name: "end_lat", aliases: []string{"end_latitude", "end station latitude"}},
}

// ReadTrips reads trips from a CSV table with a header row containing
// start_lng, start_lat, end_lng and end_lat columns (or their long forms).
// Other columns are ignored.
func ReadTrips(r io.Reader, opts ...Option) (*TripSet, error) {
	t, err := newTable(r, tripColumns, opts)
	if err != nil {
		return nil, err
	}

	set := &TripSet{}
	numeric := []bool{true, true, true, true}
	set.Skipped, err = t.each(numeric, func(_ []string, v []float64, _ int) error {
		set.Trips = append(set.Trips, Trip{StartLng: v[0], StartLat: v[1], EndLng: v[2], EndLat: v[3]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	flowarc.Logger().Info("trips: loaded",
		slog.Int("trips", len(set.Trips)), slog.Int("skipped", len(set.Skipped)))
	return set, nil
}
