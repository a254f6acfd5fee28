// Package export writes assembled result rows to files: the CSV contract
// plus optional XLSX, GeoJSON and a YAML run summary.
package export

import (
	"strconv"

	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

// Header is the fixed column order of every tabular output.
var Header = []string{"Source", "Name", "Latitude", "Longitude", "Distance(m)", "URL"}

// Record renders a row as Header-ordered strings; absent values are empty.
func Record(r model.Row) []string {
	lat, lon, dist := "", "", ""
	if r.Location != nil {
		lat = geo.FormatDegrees(r.Location.Lat)
		lon = geo.FormatDegrees(r.Location.Lon)
	}
	if r.Distance != nil {
		dist = strconv.Itoa(*r.Distance)
	}
	return []string{r.Source.String(), r.Name, lat, lon, dist, r.URL}
}
