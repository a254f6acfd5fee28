// Package wikipedia provides a client for the MediaWiki geosearch and page
// info APIs.
package wikipedia

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/fetcher"
	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

const (
	// DefaultBaseURL is the English Wikipedia action API endpoint.
	DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

	// MaxRadius is the largest gsradius the API accepts, in meters.
	MaxRadius = 10000

	// MaxLimit is the largest gslimit the API accepts.
	MaxLimit = 500
)

// Client defines the Wikipedia operations used by the search.
type Client interface {
	// Geosearch returns pages with coordinates within radius meters of center.
	Geosearch(ctx context.Context, center geo.Coordinate, radius, limit int) ([]model.Hit, error)
	// ResolveURL returns the canonical page URL for title.
	ResolveURL(ctx context.Context, title string) (string, error)
}

// Option configures the Wikipedia client.
type Option func(*httpClient)

// WithBaseURL sets a custom action API endpoint (another language edition, or a test server).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

type httpClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// NewClient creates a Wikipedia client that issues requests through f.
func NewClient(f fetcher.Fetcher, opts ...Option) Client {
	c := &httpClient{
		fetcher: f,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type geosearchResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Geosearch []struct {
			PageID int64   `json:"pageid"`
			Title  string  `json:"title"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			Dist   float64 `json:"dist"`
		} `json:"geosearch"`
	} `json:"query"`
}

type pageInfoResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Pages []struct {
			PageID  int64  `json:"pageid"`
			Title   string `json:"title"`
			FullURL string `json:"fullurl"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *httpClient) Geosearch(ctx context.Context, center geo.Coordinate, radius, limit int) ([]model.Hit, error) {
	if radius > MaxRadius {
		zap.L().Debug("wikipedia: clamping geosearch radius",
			zap.Int("requested", radius),
			zap.Int("max", MaxRadius),
		)
		radius = MaxRadius
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if radius < 1 || limit < 1 {
		return nil, eris.Errorf("wikipedia: invalid geosearch radius %d or limit %d", radius, limit)
	}

	params := url.Values{
		"action":        {"query"},
		"list":          {"geosearch"},
		"gscoord":       {geo.FormatDegrees(center.Lat) + "|" + geo.FormatDegrees(center.Lon)},
		"gsradius":      {strconv.Itoa(radius)},
		"gslimit":       {strconv.Itoa(limit)},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	var resp geosearchResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return nil, eris.Wrap(err, "wikipedia: geosearch")
	}
	if resp.Error != nil {
		return nil, eris.Errorf("wikipedia: geosearch api error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if resp.Query == nil {
		return nil, eris.New("wikipedia: geosearch response missing query")
	}

	hits := make([]model.Hit, 0, len(resp.Query.Geosearch))
	for _, p := range resp.Query.Geosearch {
		hits = append(hits, model.Hit{
			Title:    p.Title,
			PageID:   p.PageID,
			Location: geo.Coordinate{Lat: p.Lat, Lon: p.Lon},
		})
	}
	return hits, nil
}

func (c *httpClient) ResolveURL(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", eris.New("wikipedia: empty title")
	}

	params := url.Values{
		"action":        {"query"},
		"titles":        {title},
		"prop":          {"info"},
		"inprop":        {"url"},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	var resp pageInfoResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return "", eris.Wrapf(err, "wikipedia: page info for %q", title)
	}
	if resp.Error != nil {
		return "", eris.Errorf("wikipedia: page info api error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return "", eris.Errorf("wikipedia: no page info for %q", title)
	}

	page := resp.Query.Pages[0]
	if page.Missing || page.FullURL == "" {
		return "", eris.Errorf("wikipedia: page %q has no url", title)
	}
	return page.FullURL, nil
}
