package stats

import "node-stats/internal/metrics"

// CounterSource is a live key -> count mapping owned by the node.
// Snapshot must read every counter atomically.
type CounterSource interface {
	Snapshot() map[string]int64
}

// Aggregator drains a counter source into an ordered Snapshot.
type Aggregator struct {
	format *Formatter
}

func NewAggregator(format *Formatter) *Aggregator {
	return &Aggregator{format: format}
}

// Refresh merges the current counts of src into a fresh accumulation and
// returns one row per key in ascending key order. An empty source yields an
// empty snapshot.
func (a *Aggregator) Refresh(src CounterSource) Snapshot {
	counts := make(map[string]int64)
	metrics.Merge(counts, src.Snapshot())

	keys := metrics.SortedKeys(counts)
	snap := Snapshot{
		names:  make([]string, 0, len(keys)),
		values: make([]string, 0, len(keys)),
	}
	for _, key := range keys {
		snap.add(key, a.format.FormatInt(counts[key]))
	}
	return snap
}
