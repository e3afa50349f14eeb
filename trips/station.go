package trips

import (
	"io"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/geo"
)

// Station is a named point such as a bike dock.
type Station struct {
	Name     string
	Lng, Lat float64
}

// Pos returns the projected station position.
func (s Station) Pos() flowarc.Vec2 {
	return geo.Project(s.Lng, s.Lat)
}

var stationColumns = []column{
	{name: "name", aliases: []string{"station", "station name"}},
	{name: "latitude", aliases: []string{"lat"}},
	{name: "longitude", aliases: []string{"lng", "lon"}},
}

// ReadStations reads stations from a CSV table with name, latitude and
// longitude columns. Malformed rows are skipped and returned alongside.
func ReadStations(r io.Reader, opts ...Option) ([]Station, []RowError, error) {
	t, err := newTable(r, stationColumns, opts)
	if err != nil {
		return nil, nil, err
	}

	var stations []Station
	numeric := []bool{false, true, true}
	skipped, err := t.each(numeric, func(f []string, v []float64, _ int) error {
		stations = append(stations, Station{Name: f[0], Lat: v[1], Lng: v[2]})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	flowarc.Logger().Info("trips: stations loaded", "stations", len(stations), "skipped", len(skipped))
	return stations, skipped, nil
}
