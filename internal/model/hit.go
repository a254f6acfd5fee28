// Package model holds the records exchanged between the provider clients,
// the search coordinator and the result assembler.
package model

import "github.com/sells-group/geo2wiki/internal/geo"

// Hit is a raw encyclopedia geosearch result.
type Hit struct {
	Title    string         `json:"title"`
	PageID   int64          `json:"pageid,omitempty"`
	Location geo.Coordinate `json:"location"`
}

// AdminInfo is the administrative description of the search center returned
// by the reverse lookup.
type AdminInfo struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
}

// Empty reports whether the lookup produced nothing usable.
func (a *AdminInfo) Empty() bool {
	return a == nil || a.DisplayName == ""
}
