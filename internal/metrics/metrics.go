package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Node
	UptimeSeconds MetricKey = "uptime_seconds"

	// Refresh cycles
	RefreshCyclesTotal    MetricKey = "refresh_cycles_total"
	RefreshFailuresTotal  MetricKey = "refresh_failures_total"
	RefreshEventsTotal    MetricKey = "refresh_events_total"
	RefreshCoalescedTotal MetricKey = "refresh_events_coalesced_total"

	// Peers
	PeersHealthy      MetricKey = "peers_healthy"
	PeersUnhealthy    MetricKey = "peers_unhealthy"
	PeerFailuresTotal MetricKey = "peer_failures_total"

	// Heartbeat metrics
	HeartbeatRunsTotal     MetricKey = "heartbeat_runs_total"
	HeartbeatSuccessTotal  MetricKey = "heartbeat_success_total"
	HeartbeatFailuresTotal MetricKey = "heartbeat_failures_total"
)

// Registry is a set of named non-negative counters shared between the
// goroutines that update them and the reporters that read them.
//
// Each counter is read and written atomically, so a reader never sees a torn
// value for one key. Different keys may be read at different instants.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta. Counters only move forward, so
// non-positive deltas are ignored.
func (r *Registry) Add(key MetricKey, delta int64) {
	if delta <= 0 {
		return
	}
	atomic.AddInt64(r.counter(key), delta)
}

// Set overwrites a gauge-style metric. Negative values are ignored.
func (r *Registry) Set(key MetricKey, value int64) {
	if value < 0 {
		return
	}
	atomic.StoreInt64(r.counter(key), value)
}

// Get returns the current value of a metric, or 0 if it was never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if !ok {
		return 0
	}
	return atomic.LoadInt64(ptr)
}

// counter returns the cell for key, creating it on first use.
func (r *Registry) counter(key MetricKey) *int64 {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		return ptr
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		return ptr
	}

	ptr = new(int64)
	r.counters[key] = ptr
	return ptr
}
