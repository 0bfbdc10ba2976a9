package domain

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371008.8

// DefaultNearbyRadiusMeters is the distance under which two points of interest
// are considered to overlap on the map.
const DefaultNearbyRadiusMeters = 100.0

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Nearby returns the points of interest within radiusMeters of loc, in the
// order they appear in pois. A non-positive radius uses DefaultNearbyRadiusMeters.
func Nearby(pois []PointOfInterest, loc Location, radiusMeters float64) []PointOfInterest {
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusMeters
	}
	out := []PointOfInterest{}
	for _, p := range pois {
		if DistanceMeters(loc, p.Location) <= radiusMeters {
			out = append(out, p)
		}
	}
	return out
}
