package geo

import (
	"fmt"
	"math"
)

// Bounds is a rectangular latitude/longitude region. The zero value is
// treated as "no restriction".
type Bounds struct {
	LatMin float64 `json:"lat_min" yaml:"lat_min"`
	LatMax float64 `json:"lat_max" yaml:"lat_max"`
	LonMin float64 `json:"lon_min" yaml:"lon_min"`
	LonMax float64 `json:"lon_max" yaml:"lon_max"`
}

// Enabled reports whether the bounds restrict anything.
func (b Bounds) Enabled() bool {
	return b != Bounds{}
}

// Contains reports whether p lies inside the bounds (inclusive). Disabled
// bounds contain every point.
func (b Bounds) Contains(p Point) bool {
	if !b.Enabled() {
		return true
	}
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax && p.Lon >= b.LonMin && p.Lon <= b.LonMax
}

// Validate checks that the bounds describe a non-empty region.
func (b Bounds) Validate() error {
	if !b.Enabled() {
		return nil
	}
	if b.LatMin > b.LatMax || b.LonMin > b.LonMax {
		return fmt.Errorf("bounds min must not exceed max")
	}
	if err := ValidatePoint(Point{Lat: b.LatMin, Lon: b.LonMin}); err != nil {
		return err
	}
	return ValidatePoint(Point{Lat: b.LatMax, Lon: b.LonMax})
}

// ValidatePoint rejects NaN, infinite and out-of-range coordinates.
func ValidatePoint(p Point) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("coordinates must be finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", p.Lon)
	}
	return nil
}
