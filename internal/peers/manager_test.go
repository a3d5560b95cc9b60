package peers

import (
	"sync/atomic"
	"testing"

	"node-stats/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerManagerAddAndIsHealthy(t *testing.T) {
	cfg := DefaultPeerConfig()
	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	pm.AddPeer("node-1")
	assert.True(t, pm.IsHealthy("node-1"))
	assert.False(t, pm.IsHealthy("node-2"))
	assert.Equal(t, int64(1), reg.Get(metrics.PeersHealthy))
}

func TestPeerManagerMarkFailureTransitionsToUnhealthy(t *testing.T) {
	cfg := DefaultPeerConfig()
	cfg.Health.FailureThreshold = 2

	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	pm.AddPeer("node-1")

	pm.MarkFailure("node-1")
	assert.True(t, pm.IsHealthy("node-1"))

	pm.MarkFailure("node-1")
	assert.False(t, pm.IsHealthy("node-1"))

	snap := reg.Snapshot()
	assert.Equal(t, int64(2), snap[string(metrics.PeerFailuresTotal)])
	assert.Equal(t, int64(1), snap[string(metrics.PeersUnhealthy)])
	assert.Equal(t, int64(0), snap[string(metrics.PeersHealthy)])
}

func TestPeerManagerMarkSuccessRecoversPeer(t *testing.T) {
	cfg := DefaultPeerConfig()
	cfg.Health.FailureThreshold = 1
	cfg.Health.SuccessThreshold = 2

	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	pm.AddPeer("node-1")
	pm.MarkFailure("node-1")
	assert.False(t, pm.IsHealthy("node-1"))

	pm.MarkSuccess("node-1")
	assert.False(t, pm.IsHealthy("node-1"))

	pm.MarkSuccess("node-1")
	assert.True(t, pm.IsHealthy("node-1"))

	snap := reg.Snapshot()
	assert.Equal(t, int64(1), snap[string(metrics.PeersHealthy)])
	assert.Equal(t, int64(0), snap[string(metrics.PeersUnhealthy)])
}

func TestPeerManagerCountersResetCorrectly(t *testing.T) {
	cfg := DefaultPeerConfig()
	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	pm.AddPeer("node-1")

	pm.MarkSuccess("node-1")
	pm.MarkFailure("node-1")

	peer := pm.peers["node-1"]
	assert.Equal(t, 0, peer.SuccessCount)
	assert.Equal(t, 1, peer.FailureCount)
}

func TestPeerManagerUnknownPeerNoPanic(t *testing.T) {
	cfg := DefaultPeerConfig()
	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	assert.NotPanics(t, func() {
		pm.MarkFailure("unknown-peer")
		pm.MarkSuccess("unknown-peer")
	})
}

func TestPeerManagerGetPeersSnapshot(t *testing.T) {
	cfg := DefaultPeerConfig()
	reg := metrics.NewRegistry()
	pm := NewPeerManager(cfg, reg)

	pm.AddPeer("node-2")
	pm.AddPeer("node-1")

	peers := pm.GetPeers()
	assert.Len(t, peers, 2)
	assert.Contains(t, peers, "node-1")
	assert.Contains(t, peers, "node-2")

	snap := pm.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "node-1", snap[0].Address)
	assert.Equal(t, "node-2", snap[1].Address)

	// Copies, not live peers
	snap[0].State = Unhealthy
	assert.True(t, pm.IsHealthy("node-1"))
}

func TestPeerManagerOnChange(t *testing.T) {
	cfg := DefaultPeerConfig()
	cfg.Health.FailureThreshold = 2
	pm := NewPeerManager(cfg, metrics.NewRegistry())

	var calls atomic.Int32
	pm.OnChange(func() {
		// Must be callable without deadlocking on the manager
		_ = pm.Snapshot()
		calls.Add(1)
	})

	pm.AddPeer("node-1")
	assert.Equal(t, int32(1), calls.Load(), "new peer is a change")

	pm.AddPeer("node-1")
	assert.Equal(t, int32(1), calls.Load(), "re-adding is not a change")

	pm.MarkFailure("node-1")
	assert.Equal(t, int32(1), calls.Load(), "below threshold, state unchanged")

	pm.MarkFailure("node-1")
	assert.Equal(t, int32(2), calls.Load(), "healthy -> unhealthy")
}

func TestPeerStateMarshalText(t *testing.T) {
	text, err := Unhealthy.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "unhealthy", string(text))
	assert.Equal(t, "healthy", Healthy.String())
}
