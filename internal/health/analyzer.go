package health

import (
	"strings"

	"node-stats/internal/logs"
	"node-stats/internal/metrics"
)

// Analyzer converts node metrics and recent logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logger  *logs.Logger
	rules   []Rule
}

func NewAnalyzer(reg *metrics.Registry, logger *logs.Logger) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logger:  logger,
		rules: []Rule{
			RefreshFailureRule,
			PeerUnhealthyRule,
			HeartbeatFailureRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	escalate := func(severity Status) {
		if severity == StatusCritical {
			status = StatusCritical
		} else if severity == StatusDegraded && status == StatusOK {
			status = StatusDegraded
		}
	}

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		escalate(result.Severity)
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	abortedRenders := 0
	panicCount := 0

	for _, entry := range a.logger.GetLast(100) {
		if entry.Level != logs.ERROR {
			continue
		}
		switch {
		case strings.Contains(entry.Message, "render aborted"):
			abortedRenders++
		case strings.Contains(entry.Message, "panic"):
			panicCount++
		}
	}

	if abortedRenders > 0 {
		signals = append(signals, "Table render calls aborted on invalid indices")
		recommendations = append(recommendations, "Fix the display client's row/column bounds")
		escalate(StatusDegraded)
	}

	if panicCount > 0 {
		signals = append(signals, "Application panics detected in logs")
		recommendations = append(recommendations, "Inspect stack traces and stabilize error handling")
		escalate(StatusCritical)
	}

	/* ---------- SUMMARY ---------- */

	summary := "Node is healthy"
	if status != StatusOK {
		summary = "Node health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
