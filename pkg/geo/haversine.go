package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6_371_000.0

// Distance returns the great-circle distance in meters between two WGS84
// coordinates using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether the point (lat2, lon2) lies within radiusMeters
// of the center (lat1, lon1), and returns the computed distance.
func WithinRadius(lat1, lon1, lat2, lon2, radiusMeters float64) (bool, float64) {
	d := Distance(lat1, lon1, lat2, lon2)
	return d <= radiusMeters, d
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
