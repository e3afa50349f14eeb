// Package geo projects geographic coordinates into the planar Web Mercator
// coordinate system (EPSG:3857) used by the arc generator.
package geo

import (
	"math"

	"github.com/gogpu/flowarc"
)

const (
	// EarthRadius is the sphere radius of Web Mercator in meters.
	EarthRadius = 6378137.0

	// MaxLatitude is the latitude at which Web Mercator becomes square.
	MaxLatitude = 85.0511287798066

	// MaxExtent is the projected x of longitude 180.
	MaxExtent = math.Pi * EarthRadius
)

// LngLatToXY projects a longitude/latitude pair in degrees into Web Mercator
// meters. Latitudes beyond ±MaxLatitude are clamped.
func LngLatToXY(lng, lat float64) (x, y float64) {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	x = EarthRadius * lng * math.Pi / 180
	y = EarthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// XYToLngLat converts Web Mercator meters back to longitude/latitude degrees.
func XYToLngLat(x, y float64) (lng, lat float64) {
	lng = x / EarthRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/EarthRadius)) - math.Pi/2) * 180 / math.Pi
	return lng, lat
}

// Project returns the Web Mercator position of a longitude/latitude pair.
func Project(lng, lat float64) flowarc.Vec2 {
	x, y := LngLatToXY(lng, lat)
	return flowarc.V2(x, y)
}

// Bounds is an axis-aligned rectangle in projected coordinates.
// The zero value is empty.
type Bounds struct {
	Min, Max flowarc.Vec2
	valid    bool
}

// Extend grows the bounds to contain p. Non-finite points are ignored.
func (b *Bounds) Extend(p flowarc.Vec2) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return
	}
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min.X, b.Min.Y = min(b.Min.X, p.X), min(b.Min.Y, p.Y)
	b.Max.X, b.Max.Y = max(b.Max.X, p.X), max(b.Max.Y, p.Y)
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool {
	return !b.valid
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() flowarc.Vec2 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the width and height of the bounds.
func (b Bounds) Size() (w, h float64) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y
}
