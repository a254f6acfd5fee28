package model

import "github.com/sells-group/geo2wiki/internal/geo"

// Source identifies which provider category a Row came from.
type Source int

// Result sources.
const (
	SourceEncyclopedia Source = iota
	SourceMapAdmin
	SourceMapFeature
)

// String returns the label written to the output's Source column.
func (s Source) String() string {
	switch s {
	case SourceEncyclopedia:
		return "Wikipedia"
	case SourceMapAdmin, SourceMapFeature:
		return "OSM"
	default:
		return "unknown"
	}
}

// Sentinel names emitted when a source category produced nothing.
const (
	NoEncyclopediaResults = "No results found"
	NoAdminInfo           = "No administrative info found"
	NoNearbyFeatures      = "No nearby features found"
)

// Row is one normalized output record. Nil Location and Distance mean the
// field is empty in the output.
type Row struct {
	Source   Source
	Name     string
	Location *geo.Coordinate
	Distance *int
	URL      string
}

// Sentinel builds the placeholder row for a source with no data.
func Sentinel(src Source, name string) Row {
	return Row{Source: src, Name: name}
}

// IsSentinel reports whether the row is a placeholder.
func (r Row) IsSentinel() bool {
	return r.Location == nil && r.Distance == nil && r.URL == "" &&
		(r.Name == NoEncyclopediaResults || r.Name == NoAdminInfo || r.Name == NoNearbyFeatures)
}
