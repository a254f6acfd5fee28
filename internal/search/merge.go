package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/geo2wiki/internal/model"
)

// titleKey normalizes a page title for duplicate detection.
func titleKey(title string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(title)))
}

// mergeHits appends the hits in latest whose titles are not already in
// existing, preserving first-seen order.
func mergeHits(existing, latest []model.Hit) []model.Hit {
	seen := make(map[string]struct{}, len(existing)+len(latest))
	merged := make([]model.Hit, 0, len(existing)+len(latest))
	for _, h := range existing {
		seen[titleKey(h.Title)] = struct{}{}
		merged = append(merged, h)
	}
	for _, h := range latest {
		k := titleKey(h.Title)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, h)
	}
	return merged
}
