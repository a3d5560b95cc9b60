package peers

import "time"

// TimeoutPolicy defines request-level timeout
type TimeoutPolicy struct {
	HeartbeatTimeout time.Duration
}

// HealthPolicy defines when a peer is considered healthy or recovered
type HealthPolicy struct {
	FailureThreshold int //consecutive failures to mark unhealthy
	SuccessThreshold int //consecutive successes to mark healthy again
}

type HeartbeatPolicy struct {
	Interval time.Duration
	Path     string // probed on every peer, e.g. /internal/heartbeat
}

type PeerConfig struct {
	Timeout   TimeoutPolicy
	Health    HealthPolicy
	Heartbeat HeartbeatPolicy
}

func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		Timeout: TimeoutPolicy{
			HeartbeatTimeout: 1 * time.Second,
		},
		Health: HealthPolicy{
			FailureThreshold: 3,
			SuccessThreshold: 2,
		},
		Heartbeat: HeartbeatPolicy{
			Interval: 5 * time.Second,
			Path:     "/internal/heartbeat",
		},
	}
}
