package api

import "net/http"

func RegisterRoutes(mux *http.ServeMux, h *Handler) http.Handler {
	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.Handle(pattern, CountAPICalls(h.state, name)(fn))
	}

	// Stats tables
	route("GET /stats/{model}", "stats", h.GetStats)
	route("GET /ws/stats/{model}", "stream", h.StreamStats)

	// Observability APIs
	route("GET /metrics", "metrics", h.GetMetrics)
	route("GET /health", "health", h.GetHealth)

	// Admin APIs
	route("GET /admin/peers", "peers", h.GetPeers)

	// Peer-to-peer
	route("GET /internal/heartbeat", "heartbeat", h.Heartbeat)

	// Middlewares
	return Chain(
		mux,
		RecoveryMiddleware(h.logger),
		LoggingMiddleware(h.logger),
	)
}
