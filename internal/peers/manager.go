package peers

import (
	"slices"
	"strings"
	"sync"
	"time"

	"node-stats/internal/metrics"
)

// PeerState represents the health state of a peer.
type PeerState int

const (
	Healthy PeerState = iota
	Unhealthy
)

func (s PeerState) String() string {
	if s == Healthy {
		return "healthy"
	}
	return "unhealthy"
}

// MarshalText renders the state by name in JSON payloads.
func (s PeerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Peer tracks the health-related state for a single remote node
type Peer struct {
	Address      string    `json:"address"`
	State        PeerState `json:"state"`
	FailureCount int       `json:"failure_count"`
	SuccessCount int       `json:"success_count"`
	LastSeen     time.Time `json:"last_seen"`
}

// PeerManager manages the health state of the node's remote peers.
//
// Whenever the peer set or a peer's State changes, the registered change
// hook is called after the manager's lock has been released.
type PeerManager struct {
	mu       sync.RWMutex
	peers    map[string]*Peer
	config   PeerConfig
	metrics  *metrics.Registry
	onChange func()
}

// NewPeerManager creates a new PeerManager
func NewPeerManager(cfg PeerConfig, reg *metrics.Registry) *PeerManager {
	return &PeerManager{
		peers:   make(map[string]*Peer),
		config:  cfg,
		metrics: reg,
	}
}

// OnChange registers fn to be called after every peer set or state change.
func (pm *PeerManager) OnChange(fn func()) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.onChange = fn
}

// AddPeer registers a new Peer
func (pm *PeerManager) AddPeer(addr string) {
	pm.mu.Lock()
	_, exists := pm.peers[addr]
	if !exists {
		pm.peers[addr] = &Peer{
			Address: addr,
			State:   Healthy,
		}
		pm.updateGaugesLocked()
	}
	hook := pm.onChange
	pm.mu.Unlock()

	if !exists && hook != nil {
		hook()
	}
}

// MarkFailure marks a peer as failed
func (pm *PeerManager) MarkFailure(addr string) {
	pm.mu.Lock()
	peer, ok := pm.peers[addr]
	if !ok {
		pm.mu.Unlock()
		return
	}
	pm.metrics.Inc(metrics.PeerFailuresTotal)

	before := peer.State
	peer.FailureCount++
	peer.SuccessCount = 0
	if peer.FailureCount >= pm.config.Health.FailureThreshold {
		peer.State = Unhealthy
	}
	changed := pm.settleLocked(peer, before)
	hook := pm.onChange
	pm.mu.Unlock()

	if changed && hook != nil {
		hook()
	}
}

// MarkSuccess marks a peer as successful
func (pm *PeerManager) MarkSuccess(addr string) {
	pm.mu.Lock()
	peer, ok := pm.peers[addr]
	if !ok {
		pm.mu.Unlock()
		return
	}

	before := peer.State
	peer.SuccessCount++
	peer.FailureCount = 0
	peer.LastSeen = time.Now()
	if peer.SuccessCount >= pm.config.Health.SuccessThreshold {
		peer.State = Healthy
	}
	changed := pm.settleLocked(peer, before)
	hook := pm.onChange
	pm.mu.Unlock()

	if changed && hook != nil {
		hook()
	}
}

// settleLocked refreshes the health gauges if peer left state before.
func (pm *PeerManager) settleLocked(peer *Peer, before PeerState) bool {
	if peer.State == before {
		return false
	}
	pm.updateGaugesLocked()
	return true
}

func (pm *PeerManager) updateGaugesLocked() {
	var healthy, unhealthy int64
	for _, p := range pm.peers {
		if p.State == Healthy {
			healthy++
		} else {
			unhealthy++
		}
	}
	pm.metrics.Set(metrics.PeersHealthy, healthy)
	pm.metrics.Set(metrics.PeersUnhealthy, unhealthy)
}

func (pm *PeerManager) IsHealthy(addr string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	peer, ok := pm.peers[addr]
	return ok && peer.State == Healthy
}

func (pm *PeerManager) GetPeers() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	out := make([]string, 0, len(pm.peers))
	for addr := range pm.peers {
		out = append(out, addr)
	}
	return out
}

// Snapshot returns copies of all peers ordered by address.
func (pm *PeerManager) Snapshot() []Peer {
	pm.mu.RLock()
	out := make([]Peer, 0, len(pm.peers))
	for _, p := range pm.peers {
		out = append(out, *p)
	}
	pm.mu.RUnlock()

	slices.SortFunc(out, func(a, b Peer) int {
		return strings.Compare(a.Address, b.Address)
	})
	return out
}
