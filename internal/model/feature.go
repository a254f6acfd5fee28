package model

import (
	"fmt"
	"strings"

	"github.com/sells-group/geo2wiki/internal/geo"
)

// OSM element types returned by the feature search.
const (
	ElementNode     = "node"
	ElementWay      = "way"
	ElementRelation = "relation"
)

// Feature is a raw map element. Nodes carry Location; ways carry Geometry
// when requested with full geometry output.
type Feature struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Location *geo.Coordinate   `json:"location,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Geometry []geo.Coordinate  `json:"geometry,omitempty"`
}

// Name returns the trimmed "name" tag, or "" when absent.
func (f Feature) Name() string {
	return strings.TrimSpace(f.Tags["name"])
}

// Key identifies the element across search iterations.
func (f Feature) Key() string {
	return fmt.Sprintf("%s/%d", f.Type, f.ID)
}

// Position derives a representative coordinate: the node position, or the
// centroid of a way's geometry. ok is false when neither is available.
func (f Feature) Position() (geo.Coordinate, bool) {
	if f.Location != nil {
		return *f.Location, true
	}
	return geo.Centroid(f.Geometry)
}
