// Package geo contains pure geographic computation helpers.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees. Inputs are not validated; callers are
// expected to range-check coordinates at their own boundary.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLng := degToRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// PickupETAMinutes estimates the minutes a driver needs to cover the given
// distance, assuming an average city speed of 30 km/h (2 minutes per km).
func PickupETAMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm * 2))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
