package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

// HitSearcher finds encyclopedia pages around a point.
type HitSearcher interface {
	Geosearch(ctx context.Context, center geo.Coordinate, radius, limit int) ([]model.Hit, error)
}

// URLResolver looks up the canonical URL of an encyclopedia page.
type URLResolver interface {
	ResolveURL(ctx context.Context, title string) (string, error)
}

// Encyclopedia is the full encyclopedia provider.
type Encyclopedia interface {
	HitSearcher
	URLResolver
}

// AdminLookup describes the administrative area around a point.
type AdminLookup interface {
	Reverse(ctx context.Context, center geo.Coordinate) (*model.AdminInfo, error)
}

// FeatureSearcher finds map features around a point.
type FeatureSearcher interface {
	NearbyFeatures(ctx context.Context, center geo.Coordinate, radius int) ([]model.Feature, error)
}

// Sources is the failure boundary around the provider clients. Every
// provider error is logged here and turned into an empty value, so the
// coordinator and assembler only ever see results or their absence.
type Sources struct {
	encyclopedia Encyclopedia
	admin        AdminLookup
	features     FeatureSearcher
	log          *zap.Logger
}

// NewSources wraps the three provider clients.
func NewSources(enc Encyclopedia, admin AdminLookup, features FeatureSearcher) *Sources {
	return &Sources{
		encyclopedia: enc,
		admin:        admin,
		features:     features,
		log:          zap.L().With(zap.String("component", "search.sources")),
	}
}

// Hits returns the geosearch results, or nil when the call failed.
func (s *Sources) Hits(ctx context.Context, center geo.Coordinate, radius, limit int) []model.Hit {
	hits, err := s.encyclopedia.Geosearch(ctx, center, radius, limit)
	if err != nil {
		s.log.Warn("encyclopedia geosearch failed, treating as no hits",
			zap.Int("radius", radius),
			zap.Error(err),
		)
		return nil
	}
	return hits
}

// Admin returns the admin info, or nil when the lookup failed or was empty.
func (s *Sources) Admin(ctx context.Context, center geo.Coordinate) *model.AdminInfo {
	info, err := s.admin.Reverse(ctx, center)
	if err != nil {
		s.log.Warn("admin lookup failed", zap.Error(err))
		return nil
	}
	if info.Empty() {
		return nil
	}
	return info
}

// Features returns nearby map features, or nil when the search failed.
func (s *Sources) Features(ctx context.Context, center geo.Coordinate, radius int) []model.Feature {
	features, err := s.features.NearbyFeatures(ctx, center, radius)
	if err != nil {
		s.log.Warn("feature search failed, treating as no features",
			zap.Int("radius", radius),
			zap.Error(err),
		)
		return nil
	}
	return features
}

// URL resolves a page URL on a best-effort basis; "" on any failure.
func (s *Sources) URL(ctx context.Context, title string) string {
	u, err := s.encyclopedia.ResolveURL(ctx, title)
	if err != nil {
		s.log.Debug("page url lookup failed", zap.String("title", title), zap.Error(err))
		return ""
	}
	return u
}
