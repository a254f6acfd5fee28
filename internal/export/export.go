package export

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/model"
)

// Supported output formats.
const (
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatGeoJSON = "geojson"
	FormatSummary = "summary"
)

// FilenameLayout is the time layout of result file names.
const FilenameLayout = "results 02 Jan 2006_15-04-05"

// Filename returns the timestamped result file name for ext.
func Filename(now time.Time, ext string) string {
	return now.Format(FilenameLayout) + "." + ext
}

// ParseFormats normalizes a format list, rejecting unknown names. An empty
// list means CSV only.
func ParseFormats(in []string) ([]string, error) {
	if len(in) == 0 {
		return []string{FormatCSV}, nil
	}
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatCSV, FormatXLSX, FormatGeoJSON, FormatSummary:
		default:
			return nil, eris.Errorf("export: unknown format %q", f)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Exporter writes one run's rows to Dir in each requested format.
type Exporter struct {
	Dir     string
	Formats []string
	Now     func() time.Time
}

// Write creates every requested file and returns their paths. The summary,
// if requested, is written last and lists the other files.
func (e *Exporter) Write(rows []model.Row, summary Summary) ([]string, error) {
	formats, err := ParseFormats(e.Formats)
	if err != nil {
		return nil, err
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create output dir %s", dir)
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	ts := now()

	var paths []string
	wantSummary := false
	for _, f := range formats {
		switch f {
		case FormatCSV:
			p := filepath.Join(dir, Filename(ts, "csv"))
			if err := writeFile(p, func(w io.Writer) error { return WriteCSV(w, rows) }); err != nil {
				return paths, err
			}
			paths = append(paths, p)
		case FormatXLSX:
			p := filepath.Join(dir, Filename(ts, "xlsx"))
			if err := WriteXLSX(p, rows); err != nil {
				return paths, err
			}
			paths = append(paths, p)
		case FormatGeoJSON:
			p := filepath.Join(dir, Filename(ts, "geojson"))
			if err := writeFile(p, func(w io.Writer) error { return WriteGeoJSON(w, rows) }); err != nil {
				return paths, err
			}
			paths = append(paths, p)
		case FormatSummary:
			wantSummary = true
		}
	}

	if wantSummary {
		p := filepath.Join(dir, Filename(ts, "yaml"))
		summary.GeneratedAt = ts.UTC()
		summary.Files = make([]string, len(paths))
		for i, fp := range paths {
			summary.Files[i] = filepath.Base(fp)
		}
		if err := writeFile(p, func(w io.Writer) error { return WriteSummary(w, summary) }); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}

	zap.L().Info("export: results written",
		zap.Int("rows", len(rows)),
		zap.Strings("files", paths),
	)
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	return fn(f)
}
