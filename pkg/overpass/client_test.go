package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo2wiki/internal/fetcher"
	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
	"github.com/sells-group/geo2wiki/internal/resilience"
)

var center = geo.Coordinate{Lat: 38.8977, Lon: -77.0365}

const featuresBody = `{
  "version": 0.6,
  "elements": [
    {"type":"node","id":101,"lat":38.8981,"lon":-77.0359,"tags":{"amenity":"cafe","name":"Pennsylvania Perk"}},
    {"type":"node","id":102,"lat":38.8970,"lon":-77.0371,"tags":{"amenity":"bench"}},
    {"type":"way","id":201,"tags":{"building":"yes","name":"Eisenhower Executive Office Building"},
     "geometry":[{"lat":38.8975,"lon":-77.0395},{"lat":38.8985,"lon":-77.0395},null,{"lat":38.8985,"lon":-77.0385}]}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: "geo2wiki-test", Timeout: 5 * time.Second})
	return NewClient(f, append([]Option{WithBaseURL(srv.URL + "/api/interpreter")}, opts...)...)
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	q := BuildQuery(center, 750)
	assert.True(t, strings.HasPrefix(q, "[out:json];"))
	assert.Contains(t, q, "node(around:750,38.8977,-77.0365)[amenity];")
	assert.Contains(t, q, "way(around:750,38.8977,-77.0365)[building];")
	assert.Contains(t, q, "out body geom;")
}

func TestNearbyFeatures_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/interpreter", r.URL.Path)
		assert.Equal(t, BuildQuery(center, 500), r.URL.Query().Get("data"))
		_, _ = w.Write([]byte(featuresBody))
	})

	features, err := c.NearbyFeatures(context.Background(), center, 500)
	require.NoError(t, err)
	require.Len(t, features, 3)

	cafe := features[0]
	assert.Equal(t, model.ElementNode, cafe.Type)
	assert.Equal(t, int64(101), cafe.ID)
	require.NotNil(t, cafe.Location)
	assert.InDelta(t, 38.8981, cafe.Location.Lat, 1e-9)
	assert.Equal(t, "Pennsylvania Perk", cafe.Name())

	assert.Empty(t, features[1].Name())

	eeob := features[2]
	assert.Equal(t, model.ElementWay, eeob.Type)
	assert.Nil(t, eeob.Location)
	assert.Len(t, eeob.Geometry, 3, "null geometry points are dropped")
}

func TestNearbyFeatures_RateLimitThenSuccess(t *testing.T) {
	t.Parallel()

	const cooldown = 50 * time.Millisecond
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(featuresBody))
	}, WithRateLimitPolicy(resilience.CooldownPolicy(3, cooldown, time.Second)))

	start := time.Now()
	features, err := c.NearbyFeatures(context.Background(), center, 500)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, features, 3)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, elapsed, cooldown)
}

func TestNearbyFeatures_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRateLimitPolicy(resilience.CooldownPolicy(3, time.Millisecond, 4*time.Millisecond)))

	features, err := c.NearbyFeatures(context.Background(), center, 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited after 3 attempts")
	assert.Nil(t, features)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNearbyFeatures_OtherStatusNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}, WithRateLimitPolicy(resilience.CooldownPolicy(5, time.Millisecond, time.Millisecond)))

	_, err := c.NearbyFeatures(context.Background(), center, 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "504")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNearbyFeatures_RemarkStillReturnsElements(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"remark":"runtime error: Query timed out","elements":[{"type":"node","id":1,"lat":1,"lon":2}]}`))
	})

	features, err := c.NearbyFeatures(context.Background(), center, 500)
	require.NoError(t, err)
	assert.Len(t, features, 1)
}

func TestNearbyFeatures_InvalidRadius(t *testing.T) {
	t.Parallel()

	c := NewClient(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	_, err := c.NearbyFeatures(context.Background(), center, 0)
	require.Error(t, err)
}
