package peers

import (
	"context"
	"io"
	"net/http"
	"time"

	"node-stats/internal/logs"
	"node-stats/internal/metrics"
)

// HeartbeatWorker periodically checks peer liveness
type HeartbeatWorker struct {
	manager *PeerManager
	client  *http.Client
	config  PeerConfig
	metrics *metrics.Registry
	logger  *logs.Logger
}

// NewHeartbeatWorker creates a new heartbeat worker
func NewHeartbeatWorker(
	manager *PeerManager,
	cfg PeerConfig,
	reg *metrics.Registry,
	logger *logs.Logger,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		manager: manager,
		client:  &http.Client{Timeout: cfg.Timeout.HeartbeatTimeout},
		config:  cfg,
		metrics: reg,
		logger:  logger,
	}
}

// Start begins the heartbeat loop
// Stops immediately when the ctx is cancelled
func (hw *HeartbeatWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(hw.config.Heartbeat.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hw.runOnce(ctx)
		case <-ctx.Done():
			hw.logger.Debug("heartbeat worker stopped")
			return
		}
	}
}

func (hw *HeartbeatWorker) runOnce(ctx context.Context) {
	hw.metrics.Inc(metrics.HeartbeatRunsTotal)

	for _, peer := range hw.manager.GetPeers() {
		wasHealthy := hw.manager.IsHealthy(peer)

		if hw.probe(ctx, peer) {
			hw.metrics.Inc(metrics.HeartbeatSuccessTotal)
			hw.manager.MarkSuccess(peer)
		} else {
			hw.metrics.Inc(metrics.HeartbeatFailuresTotal)
			hw.manager.MarkFailure(peer)
		}

		switch healthy := hw.manager.IsHealthy(peer); {
		case wasHealthy && !healthy:
			hw.logger.Warnf("peer %s marked unhealthy", peer)
		case !wasHealthy && healthy:
			hw.logger.Infof("peer %s recovered", peer)
		}
	}
}

// probe reports whether peer answered the heartbeat with 200 OK.
func (hw *HeartbeatWorker) probe(ctx context.Context, peer string) bool {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		peer+hw.config.Heartbeat.Path,
		nil,
	)
	if err != nil {
		hw.logger.Warnf("heartbeat request to %q: %v", peer, err)
		return false
	}

	resp, err := hw.client.Do(req)
	if err != nil {
		hw.logger.Debugf("heartbeat to %s failed: %v", peer, err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}
