package geo

// Centroid returns the arithmetic mean of the latitudes and longitudes of
// points. This is a planar approximation: it is fine for building-sized
// footprints but drifts for large polygons and across the antimeridian.
// The second return value is false when points is empty.
func Centroid(points []Coordinate) (Coordinate, bool) {
	if len(points) == 0 {
		return Coordinate{}, false
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	return Coordinate{Lat: sumLat / n, Lon: sumLon / n}, true
}
