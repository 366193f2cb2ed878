package geo

import "math"

// EarthRadiusKm is the mean earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude" yaml:"latitude"`
	Lon float64 `json:"longitude" yaml:"longitude"`
}

// Distance returns the great-circle distance between a and b in kilometers
// on a sphere of radius EarthRadiusKm.
func Distance(a, b Point) float64 {
	return DistanceWithRadius(a, b, EarthRadiusKm)
}

// DistanceWithRadius computes the haversine distance between a and b for a
// sphere of the given radius. NaN coordinates yield NaN.
func DistanceWithRadius(a, b Point, radiusKm float64) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h marginally above 1 for antipodal points
	if h > 1 {
		h = 1
	}
	return 2 * radiusKm * math.Asin(math.Sqrt(h))
}
