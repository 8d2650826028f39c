package repository

import "math"

const earthRadiusKm = 6371.0

// GeoCircle is a point with a radius in kilometres.
type GeoCircle struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Contains reports whether (lat, lng) lies within the circle, by great-circle distance.
func (g GeoCircle) Contains(lat, lng float64) bool {
	return DistanceKm(g.Latitude, g.Longitude, lat, lng) <= g.RadiusKm
}

// DistanceKm is the haversine distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
