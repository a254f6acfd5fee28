package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geo2wiki/internal/model"
)

// FeatureCollection converts located rows into point features. Rows without
// a coordinate (sentinels, unlocated elements) are skipped.
func FeatureCollection(rows []model.Row) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	for _, r := range rows {
		if r.Location == nil {
			continue
		}
		props := map[string]any{
			"source": r.Source.String(),
			"name":   r.Name,
		}
		if r.Distance != nil {
			props["distance_m"] = *r.Distance
		}
		if r.URL != "" {
			props["url"] = r.URL
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{r.Location.Lon, r.Location.Lat}),
			Properties: props,
		})
	}
	return fc
}

// WriteGeoJSON writes the located rows as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, rows []model.Row) error {
	data, err := json.MarshalIndent(FeatureCollection(rows), "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
