package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
)

// fakeEncyclopedia returns hitsByCall[i] for the i-th geosearch call (the
// last entry repeats) and records the radii it was asked for.
type fakeEncyclopedia struct {
	mu         sync.Mutex
	hitsByCall [][]model.Hit
	err        error
	radii      []int
	urls       map[string]string
}

func (f *fakeEncyclopedia) Geosearch(_ context.Context, _ geo.Coordinate, radius, _ int) ([]model.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.radii = append(f.radii, radius)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hitsByCall) == 0 {
		return nil, nil
	}
	i := len(f.radii) - 1
	if i >= len(f.hitsByCall) {
		i = len(f.hitsByCall) - 1
	}
	return f.hitsByCall[i], nil
}

func (f *fakeEncyclopedia) ResolveURL(_ context.Context, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.urls[title]; ok {
		return u, nil
	}
	return "", fmt.Errorf("no url for %q", title)
}

func (f *fakeEncyclopedia) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.radii...)
}

// fakeAdmin returns results[i] for the i-th call (the last entry repeats).
type fakeAdmin struct {
	mu      sync.Mutex
	results []adminResult
	n       int
}

type adminResult struct {
	info *model.AdminInfo
	err  error
}

func (f *fakeAdmin) Reverse(_ context.Context, _ geo.Coordinate) (*model.AdminInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if len(f.results) == 0 {
		return nil, fmt.Errorf("unavailable")
	}
	i := f.n - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].info, f.results[i].err
}

func (f *fakeAdmin) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// fakeFeatures returns the same features on every call.
type fakeFeatures struct {
	mu       sync.Mutex
	features []model.Feature
	err      error
	n        int
}

func (f *fakeFeatures) NearbyFeatures(_ context.Context, _ geo.Coordinate, _ int) ([]model.Feature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return f.features, f.err
}

func (f *fakeFeatures) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func makeHits(titles ...string) []model.Hit {
	hits := make([]model.Hit, 0, len(titles))
	for i, t := range titles {
		hits = append(hits, model.Hit{
			Title:    t,
			PageID:   int64(i + 1),
			Location: geo.Coordinate{Lat: 38.89 + float64(i)*0.001, Lon: -77.03},
		})
	}
	return hits
}
