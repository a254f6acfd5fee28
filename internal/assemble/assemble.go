// Package assemble turns a finished search outcome into the normalized rows
// that are exported: distances from the center, page and map URLs, feature
// centroids, and a sentinel row for every source that produced nothing.
package assemble

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
	"github.com/sells-group/geo2wiki/internal/search"
)

const (
	osmBaseURL = "https://www.openstreetmap.org"
	adminZoom  = 10
)

// URLResolver resolves an encyclopedia page URL, returning "" on failure.
type URLResolver interface {
	URL(ctx context.Context, title string) string
}

// Option configures the Assembler.
type Option func(*Assembler)

// WithConcurrency sets how many page URLs are resolved in parallel.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithProgress registers a callback invoked after each page URL lookup.
// It may be called from several goroutines at once.
func WithProgress(fn func()) Option {
	return func(a *Assembler) {
		a.onResolved = fn
	}
}

// Assembler builds output rows from a search outcome.
type Assembler struct {
	resolver    URLResolver
	concurrency int
	onResolved  func()
}

// New creates an Assembler that resolves page URLs through resolver.
func New(resolver URLResolver, opts ...Option) *Assembler {
	a := &Assembler{
		resolver:    resolver,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns encyclopedia rows, then the admin row, then feature rows.
func (a *Assembler) Assemble(ctx context.Context, p search.Params, out *search.Outcome) []model.Row {
	rows := a.encyclopediaRows(ctx, p, out.Hits)
	rows = append(rows, adminRow(p.Center, out.Admin))
	rows = append(rows, featureRows(p.Center, out.Features)...)

	zap.L().Debug("assembled rows",
		zap.Int("rows", len(rows)),
		zap.Int("hits", len(out.Hits)),
		zap.Int("raw_features", len(out.Features)),
	)
	return rows
}

// encyclopediaRows annotates up to p.MaxResults hits. URL lookups run in
// parallel but each result lands at its hit's index, so order is preserved.
func (a *Assembler) encyclopediaRows(ctx context.Context, p search.Params, hits []model.Hit) []model.Row {
	if len(hits) == 0 {
		return []model.Row{model.Sentinel(model.SourceEncyclopedia, model.NoEncyclopediaResults)}
	}
	if len(hits) > p.MaxResults {
		hits = hits[:p.MaxResults]
	}

	rows := make([]model.Row, len(hits))
	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for i, h := range hits {
		loc := h.Location
		d := geo.Distance(p.Center, loc)
		rows[i] = model.Row{
			Source:   model.SourceEncyclopedia,
			Name:     h.Title,
			Location: &loc,
			Distance: &d,
		}
		g.Go(func() error {
			rows[i].URL = a.resolver.URL(ctx, h.Title)
			if a.onResolved != nil {
				a.onResolved()
			}
			return nil
		})
	}

	_ = g.Wait() // lookups are best-effort and never fail
	return rows
}

func adminRow(center geo.Coordinate, info *model.AdminInfo) model.Row {
	if info.Empty() {
		return model.Sentinel(model.SourceMapAdmin, model.NoAdminInfo)
	}
	loc := center
	d := 0
	return model.Row{
		Source:   model.SourceMapAdmin,
		Name:     info.DisplayName,
		Location: &loc,
		Distance: &d,
		URL:      AdminMapURL(center),
	}
}

// featureRows keeps named features, dropping repeats of the same element
// collected in different rounds.
func featureRows(center geo.Coordinate, features []model.Feature) []model.Row {
	seen := make(map[string]struct{}, len(features))
	var rows []model.Row
	for _, f := range features {
		name := f.Name()
		if name == "" {
			continue
		}
		key := f.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		row := model.Row{
			Source: model.SourceMapFeature,
			Name:   name,
			URL:    FeatureURL(f),
		}
		if pos, ok := f.Position(); ok {
			d := geo.Distance(center, pos)
			row.Location = &pos
			row.Distance = &d
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return []model.Row{model.Sentinel(model.SourceMapFeature, model.NoNearbyFeatures)}
	}
	return rows
}

// AdminMapURL links to the map viewer centered on c at the admin zoom level.
func AdminMapURL(c geo.Coordinate) string {
	lat, lon := geo.FormatDegrees(c.Lat), geo.FormatDegrees(c.Lon)
	return fmt.Sprintf("%s/?mlat=%s&mlon=%s#map=%d/%s/%s", osmBaseURL, lat, lon, adminZoom, lat, lon)
}

// FeatureURL links to the element's page on openstreetmap.org.
func FeatureURL(f model.Feature) string {
	return fmt.Sprintf("%s/%s/%d", osmBaseURL, f.Type, f.ID)
}
