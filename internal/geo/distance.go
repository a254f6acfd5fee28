package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all distance calculations.
const EarthRadiusMeters = 6371000

// Distance returns the haversine great-circle distance between a and b in
// meters, rounded to the nearest integer.
func Distance(a, b Coordinate) int {
	if a == b {
		return 0
	}

	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(EarthRadiusMeters * c))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
