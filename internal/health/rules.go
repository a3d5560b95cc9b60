package health

import "node-stats/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// ---------- RULES ----------

// RefreshFailureRule fires once a refresh cycle has failed. A failed cycle
// stops the node, so this is a last-gasp signal: it shows in the report the
// server logs on its way out.
func RefreshFailureRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.RefreshFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Snapshot refresh failed",
			Recommendation: "Check that the stats output directory exists and is writable",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// Unhealthy peers indicate cluster instability.
func PeerUnhealthyRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.PeersUnhealthy)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "One or more peers are unhealthy",
			Recommendation: "Inspect peer health and heartbeat configuration",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// Frequent heartbeat failures indicate liveness issues.
func HeartbeatFailureRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.HeartbeatFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Heartbeat failures detected",
			Recommendation: "Check peer availability and heartbeat endpoints",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
