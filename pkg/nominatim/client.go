// Package nominatim provides a reverse-geocoding client for the
// OpenStreetMap Nominatim service.
package nominatim

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo2wiki/internal/fetcher"
	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Reverse/
const (
	// DefaultBaseURL is the public Nominatim reverse endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org/reverse"

	// AdminZoom is the detail level used for the admin lookup (city/county).
	AdminZoom = 10
)

// Client looks up the administrative area around a coordinate.
type Client interface {
	Reverse(ctx context.Context, center geo.Coordinate) (*model.AdminInfo, error)
}

// Option configures the Nominatim client.
type Option func(*httpClient)

// WithBaseURL sets a custom reverse endpoint (self-hosted instance or test server).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithZoom overrides the reverse lookup zoom level.
func WithZoom(zoom int) Option {
	return func(c *httpClient) {
		if zoom >= 0 && zoom <= 18 {
			c.zoom = zoom
		}
	}
}

type httpClient struct {
	fetcher fetcher.Fetcher
	baseURL string
	zoom    int
}

// NewClient creates a Nominatim client. The fetcher must send an identifying
// User-Agent as required by the Nominatim usage policy.
func NewClient(f fetcher.Fetcher, opts ...Option) Client {
	c := &httpClient{
		fetcher: f,
		baseURL: DefaultBaseURL,
		zoom:    AdminZoom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reverseResponse struct {
	PlaceID     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

func (c *httpClient) Reverse(ctx context.Context, center geo.Coordinate) (*model.AdminInfo, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {geo.FormatDegrees(center.Lat)},
		"lon":            {geo.FormatDegrees(center.Lon)},
		"zoom":           {strconv.Itoa(c.zoom)},
		"addressdetails": {"1"},
	}

	var resp reverseResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return nil, eris.Wrap(err, "nominatim: reverse")
	}
	if resp.Error != "" {
		return nil, eris.Errorf("nominatim: reverse: %s", resp.Error)
	}

	name := strings.TrimSpace(resp.DisplayName)
	if name == "" {
		return nil, eris.New("nominatim: reverse returned no display name")
	}
	return &model.AdminInfo{
		DisplayName: name,
		Address:     resp.Address,
	}, nil
}
