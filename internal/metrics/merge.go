package metrics

import (
	"maps"
	"slices"
)

// Merge accumulates src into dst by key. Keys present only in dst keep
// their value; keys present in both are summed.
func Merge(dst, src map[string]int64) {
	for key, count := range src {
		dst[key] += count
	}
}

// SortedKeys returns the keys of counts in ascending order.
func SortedKeys(counts map[string]int64) []string {
	return slices.Sorted(maps.Keys(counts))
}
