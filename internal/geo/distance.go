package geo

import (
	"math"

	"dairyDispatch/models"
)

const (
	// EarthRadiusKm is Earth's mean radius in kilometres for Haversine calculation.
	EarthRadiusKm = 6371.0088
	// ArrivalRadiusMeters is how close a point must be to count as the same stop.
	ArrivalRadiusMeters = 30.0
)

// HaversineKm calculates the great-circle distance between two points
// on Earth in kilometres using the Haversine formula.
func HaversineKm(a, b models.Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// PathLengthKm sums the leg distances of a polyline.
func PathLengthKm(points []models.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1], points[i])
	}
	return total
}

// IsWithinRadius checks if two points are within radiusMeters of each other.
func IsWithinRadius(a, b models.Point, radiusMeters float64) bool {
	return HaversineKm(a, b)*1000 <= radiusMeters
}

// Valid reports whether p is a plausible WGS84 coordinate.
func Valid(p models.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// CountDistinct counts points that are not within radiusMeters of an earlier
// point, so orders at the same door count as one stop.
func CountDistinct(points []models.Point, radiusMeters float64) int {
	var seen []models.Point
	for _, p := range points {
		dup := false
		for _, s := range seen {
			if IsWithinRadius(p, s, radiusMeters) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, p)
		}
	}
	return len(seen)
}
