package node

import (
	"time"

	"github.com/algorand/go-deadlock"

	"node-stats/internal/metrics"
	"node-stats/internal/peers"
)

// State is the node's shared data. Its mutex is the node-state lock: API-call
// counters are only mutated while holding it, and every refresh cycle holds
// it for its whole duration.
type State struct {
	deadlock.Mutex

	id        string
	startTime time.Time
	apiCalls  *metrics.Registry
	metrics   *metrics.Registry
	peers     *peers.PeerManager

	changed func(reason string)
}

// NewState creates the state for node id. Changes to the peer set are
// reported through the hook registered with OnChange.
func NewState(id string, reg *metrics.Registry, pm *peers.PeerManager) *State {
	s := &State{
		id:        id,
		startTime: time.Now(),
		apiCalls:  metrics.NewRegistry(),
		metrics:   reg,
		peers:     pm,
	}
	pm.OnChange(func() { s.notify("peers") })
	return s
}

func (s *State) ID() string {
	return s.id
}

func (s *State) StartTime() time.Time {
	return s.startTime
}

// DurationInSeconds returns the whole seconds elapsed between start-up and now.
func (s *State) DurationInSeconds(now time.Time) int64 {
	return int64(now.Sub(s.startTime) / time.Second)
}

// APICalls is the per-call counter map reported by the ApiCallModel.
func (s *State) APICalls() *metrics.Registry {
	return s.apiCalls
}

// Metrics is the node's operational metrics registry.
func (s *State) Metrics() *metrics.Registry {
	return s.metrics
}

func (s *State) Peers() *peers.PeerManager {
	return s.peers
}

// RecordAPICall counts one call to the named API and reports the change.
func (s *State) RecordAPICall(name string) {
	s.Lock()
	s.apiCalls.Inc(metrics.MetricKey(name))
	s.Unlock()

	s.notify("api:" + name)
}

// OnChange registers fn to receive a reason for every node data change.
// It must be set before the node starts serving.
func (s *State) OnChange(fn func(reason string)) {
	s.changed = fn
}

func (s *State) notify(reason string) {
	if s.changed != nil {
		s.changed(reason)
	}
}
