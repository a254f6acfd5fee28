package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

func intPtr(v int) *int { return &v }

func sampleRows() []model.Row {
	center := geo.Coordinate{Lat: 38.8977, Lon: -77.0365}
	return []model.Row{
		{
			Source:   model.SourceEncyclopedia,
			Name:     "Lafayette Square",
			Location: &geo.Coordinate{Lat: 38.8996, Lon: -77.0366},
			Distance: intPtr(211),
			URL:      "https://en.wikipedia.org/wiki/Lafayette_Square",
		},
		{
			Source:   model.SourceMapAdmin,
			Name:     "Washington, District of Columbia, United States",
			Location: &center,
			Distance: intPtr(0),
			URL:      "https://www.openstreetmap.org/?mlat=38.8977&mlon=-77.0365#map=10/38.8977/-77.0365",
		},
		model.Sentinel(model.SourceMapFeature, model.NoNearbyFeatures),
	}
}

func TestRecord(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, []string{
		"Wikipedia", "Lafayette Square", "38.8996", "-77.0366", "211",
		"https://en.wikipedia.org/wiki/Lafayette_Square",
	}, Record(rows[0]))
	assert.Equal(t, "0", Record(rows[1])[4])
	assert.Equal(t, []string{"OSM", "No nearby features found", "", "", "", ""}, Record(rows[2]))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Source", "Name", "Latitude", "Longitude", "Distance(m)", "URL"}, records[0])
	assert.Equal(t, "Lafayette Square", records[1][1])
	// The admin name contains commas and must survive quoting.
	assert.Equal(t, "Washington, District of Columbia, United States", records[2][1])
	assert.Equal(t, "No nearby features found", records[3][1])
}

func TestWriteCSV_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Source,Name,Latitude,Longitude,Distance(m),URL\n", buf.String())
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)
	assert.Equal(t, "results 07 Mar 2024_09-05-03.csv", Filename(ts, "csv"))
	assert.Equal(t, "results 07 Mar 2024_09-05-03.xlsx", Filename(ts, "xlsx"))
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"csv"}, got)

	got, err = ParseFormats([]string{" CSV", "geojson", "csv", "Summary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"csv", "geojson", "summary"}, got)

	_, err = ParseFormats([]string{"csv", "pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestFeatureCollection_SkipsUnlocatedRows(t *testing.T) {
	fc := FeatureCollection(sampleRows())
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, []float64{-77.0366, 38.8996}, first.Geometry.FlatCoords())
	assert.Equal(t, "Wikipedia", first.Properties["source"])
	assert.Equal(t, 211, first.Properties["distance_m"])
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, sampleRows()))

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, "Point", doc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{-77.0366, 38.8996}, doc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Lafayette Square", doc.Features[0].Properties["name"])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRows()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 4)

	assert.Equal(t, "Source", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "URL", sheet.Rows[0].Cells[5].String())
	assert.Equal(t, "Lafayette Square", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "211", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "No nearby features found", sheet.Rows[3].Cells[1].String())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Summary{
		RunID:        "run-1",
		State:        "satisfied",
		FinalRadius:  1500,
		Iterations:   3,
		Encyclopedia: 7,
	}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, 1500, got["final_radius_m"])
	assert.Equal(t, "satisfied", got["state"])
	assert.NotContains(t, got, "files")
}

func TestExporter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	ts := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)
	e := &Exporter{
		Dir:     dir,
		Formats: []string{"summary", "csv", "geojson"},
		Now:     func() time.Time { return ts },
	}

	paths, err := e.Write(sampleRows(), Summary{RunID: "abc"})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "results 07 Mar 2024_09-05-03.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "results 07 Mar 2024_09-05-03.geojson"), paths[1])
	assert.Equal(t, filepath.Join(dir, "results 07 Mar 2024_09-05-03.yaml"), paths[2])

	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err, p)
	}

	data, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	var s Summary
	require.NoError(t, yaml.Unmarshal(data, &s))
	assert.Equal(t, "abc", s.RunID)
	assert.Equal(t, []string{"results 07 Mar 2024_09-05-03.csv", "results 07 Mar 2024_09-05-03.geojson"}, s.Files)
	assert.True(t, s.GeneratedAt.Equal(ts))
}

func TestExporter_DefaultsToCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := (&Exporter{Dir: dir}).Write(sampleRows(), Summary{})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], ".csv"))
	assert.True(t, strings.HasPrefix(filepath.Base(paths[0]), "results "))
}

func TestExporter_UnknownFormat(t *testing.T) {
	_, err := (&Exporter{Dir: t.TempDir(), Formats: []string{"txt"}}).Write(nil, Summary{})
	require.Error(t, err)
}
