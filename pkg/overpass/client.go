// Package overpass provides a client for the OpenStreetMap Overpass API,
// used to find named amenities and buildings around a point.
package overpass

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/fetcher"
	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
	"github.com/sells-group/geo2wiki/internal/resilience"
)

const (
	// DefaultBaseURL is the main public Overpass interpreter.
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"

	// DefaultCooldown is how long to back off after the first 429.
	DefaultCooldown = 60 * time.Second

	// DefaultMaxCooldown caps the doubled cooldown between later retries.
	DefaultMaxCooldown = 10 * time.Minute

	// DefaultMaxAttempts bounds the total number of tries for one request.
	DefaultMaxAttempts = 5
)

// Client searches for map features near a coordinate.
type Client interface {
	NearbyFeatures(ctx context.Context, center geo.Coordinate, radius int) ([]model.Feature, error)
}

// Option configures the Overpass client.
type Option func(*httpClient)

// WithBaseURL sets a custom interpreter endpoint (mirror or test server).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithRateLimitPolicy overrides how 429 responses are retried.
func WithRateLimitPolicy(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	fetcher fetcher.Fetcher
	baseURL string
	retry   resilience.RetryConfig
}

// NewClient creates an Overpass client that issues requests through f.
func NewClient(f fetcher.Fetcher, opts ...Option) Client {
	c := &httpClient{
		fetcher: f,
		baseURL: DefaultBaseURL,
		retry:   resilience.CooldownPolicy(DefaultMaxAttempts, DefaultCooldown, DefaultMaxCooldown),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Only rate-limit responses are retried; everything else fails fast.
	c.retry.ShouldRetry = fetcher.IsRateLimited
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("overpass", "nearby_features")
	}
	return c
}

// BuildQuery renders the Overpass QL query for amenity nodes and building
// ways within radius meters of center, with full way geometry.
func BuildQuery(center geo.Coordinate, radius int) string {
	around := fmt.Sprintf("around:%d,%s,%s", radius, geo.FormatDegrees(center.Lat), geo.FormatDegrees(center.Lon))
	return fmt.Sprintf(`[out:json];
(
  node(%s)[amenity];
  way(%s)[building];
);
out body geom;`, around, around)
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat"`
	Lon      *float64          `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []*point          `json:"geometry"`
}

type response struct {
	Remark   string    `json:"remark"`
	Elements []element `json:"elements"`
}

func (c *httpClient) NearbyFeatures(ctx context.Context, center geo.Coordinate, radius int) ([]model.Feature, error) {
	if radius < 1 {
		return nil, eris.Errorf("overpass: invalid radius %d", radius)
	}
	params := url.Values{"data": {BuildQuery(center, radius)}}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*response, error) {
		var r response
		if err := c.fetcher.GetJSON(ctx, c.baseURL, params, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		if fetcher.IsRateLimited(err) {
			return nil, eris.Wrapf(err, "overpass: still rate limited after %d attempts", c.retry.MaxAttempts)
		}
		return nil, eris.Wrap(err, "overpass: nearby features")
	}

	if resp.Remark != "" {
		// Overpass reports runtime errors (timeouts, memory) as a 200 with a remark.
		zap.L().Warn("overpass: partial response", zap.String("remark", resp.Remark))
	}

	return toFeatures(resp.Elements), nil
}

func toFeatures(elements []element) []model.Feature {
	features := make([]model.Feature, 0, len(elements))
	for _, el := range elements {
		f := model.Feature{
			Type: el.Type,
			ID:   el.ID,
			Tags: el.Tags,
		}
		if el.Lat != nil && el.Lon != nil {
			f.Location = &geo.Coordinate{Lat: *el.Lat, Lon: *el.Lon}
		}
		if len(el.Geometry) > 0 {
			f.Geometry = make([]geo.Coordinate, 0, len(el.Geometry))
			for _, p := range el.Geometry {
				if p == nil {
					continue
				}
				f.Geometry = append(f.Geometry, geo.Coordinate{Lat: p.Lat, Lon: p.Lon})
			}
		}
		features = append(features, f)
	}
	return features
}
