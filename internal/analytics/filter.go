package analytics

import (
	"strings"

	"github.com/hakichain/haki-analytics/internal/assets"
	"github.com/hakichain/haki-analytics/internal/registry"
)

// FilterAssets keeps the assets whose title or content hash contains query,
// ignoring case. An empty query returns a copy of items in order.
func FilterAssets(items []assets.ChainAsset, query string) []assets.ChainAsset {
	q := strings.ToLower(query)
	out := make([]assets.ChainAsset, 0, len(items))
	for _, a := range items {
		if q == "" || contains(a.Title, q) || contains(a.ContentHash, q) {
			out = append(out, a)
		}
	}
	return out
}

// FilterRecords keeps the records whose metadata hash or owner contains query,
// ignoring case. Missing fields match as "".
func FilterRecords(items []registry.Record, query string) []registry.Record {
	q := strings.ToLower(query)
	out := make([]registry.Record, 0, len(items))
	for _, r := range items {
		if q == "" || contains(deref(r.MetadataHash), q) || contains(deref(r.Owner), q) {
			out = append(out, r)
		}
	}
	return out
}

func contains(field, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(field), lowerQuery)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
