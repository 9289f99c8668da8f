// Package geo computes great-circle distances and distance-decay scores.
package geo

import "math"

// EarthRadiusMiles is the mean radius of Earth used for haversine distance.
const EarthRadiusMiles = 3958.8

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceMiles returns the great-circle distance in miles between two points
// given by latitude and longitude in degrees.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a a hair above 1 for antipodal points.
	a = math.Min(1, a)

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(a))
}

// Between returns the distance in miles from p to q.
func (p Point) Between(q Point) float64 {
	return DistanceMiles(p.Lat, p.Lon, q.Lat, q.Lon)
}

// Score converts a distance into a [0,1] relevance score that decays linearly
// to zero at maxRadiusMiles. A non-positive radius scores zero.
func Score(distanceMiles, maxRadiusMiles float64) float64 {
	if maxRadiusMiles <= 0 {
		return 0
	}
	return math.Max(0, 1-distanceMiles/maxRadiusMiles)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
