package geo

import "math"

const (
	// EarthRadiusKm is Earth's radius in kilometers for Haversine calculation.
	EarthRadiusKm = 6371.0
	// MaxLatitude and MaxLongitude bound valid decimal-degree coordinates.
	MaxLatitude  = 90.0
	MaxLongitude = 180.0
)

// ValidCoordinates reports whether lat/lng form a valid decimal-degree pair.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -MaxLatitude && lat <= MaxLatitude &&
		lng >= -MaxLongitude && lng <= MaxLongitude
}

// DistanceKm calculates the great-circle distance between two points
// on Earth in kilometers using the Haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// IsWithinRadiusKm checks if two coordinates are within radiusKm of each other.
func IsWithinRadiusKm(lat1, lng1, lat2, lng2, radiusKm float64) bool {
	return DistanceKm(lat1, lng1, lat2, lng2) <= radiusKm
}
