package metrics

import "sync/atomic"

// Snapshot returns a copy of every counter keyed by name.
// Each value is loaded atomically, but the map as a whole is not a
// point-in-time view: keys updated during the copy may be ahead of others.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.counters))
	for key, ptr := range r.counters {
		out[string(key)] = atomic.LoadInt64(ptr)
	}
	return out
}
