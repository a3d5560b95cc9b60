package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"node-stats/internal/health"
	"node-stats/internal/logs"
	"node-stats/internal/node"
	"node-stats/internal/sentryx"
	"node-stats/internal/stats"
)

// TableView is the read interface of a refreshing model.
type TableView interface {
	Name() string
	ColumnCount() int
	ColumnName(column int) string
	RowCount() int
	ValueAt(row, column int) string
	Rows() []stats.Row
	RefreshPending() bool
	ClearRefreshPending()
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	state    *node.State
	logger   *logs.Logger
	analyzer *health.Analyzer
	loops    map[string]*renderLoop
	upgrader websocket.Upgrader
}

// NewHandler creates a new API handler serving views by name. Each view gets
// a render loop polling its refresh flag every renderInterval; the loops run
// once Start is called.
func NewHandler(
	state *node.State,
	logger *logs.Logger,
	renderInterval time.Duration,
	views ...TableView,
) *Handler {
	h := &Handler{
		state:    state,
		logger:   logger,
		analyzer: health.NewAnalyzer(state.Metrics(), logger),
		loops:    make(map[string]*renderLoop, len(views)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, v := range views {
		h.loops[v.Name()] = newRenderLoop(v, renderInterval, logger)
	}
	return h
}

// Start runs the render loops until ctx is cancelled.
func (h *Handler) Start(ctx context.Context) {
	for _, loop := range h.loops {
		sentryx.Go(func() { loop.run(ctx) })
	}
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*renderLoop, bool) {
	loop, ok := h.loops[r.PathValue("model")]
	if !ok {
		http.Error(w, "unknown model", http.StatusNotFound)
	}
	return loop, ok
}

/* ---------------- GET /stats/{model} ---------------- */

// GetStats writes the whole published table, or a single cell when both
// row and column query parameters are given.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	loop, ok := h.view(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Has("row") || q.Has("column") {
		h.getCell(w, loop.view, q.Get("row"), q.Get("column"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(renderTable(loop.view))
}

func (h *Handler) getCell(w http.ResponseWriter, view TableView, rowParam, columnParam string) {
	row, rowErr := strconv.Atoi(rowParam)
	column, colErr := strconv.Atoi(columnParam)
	if rowErr != nil || colErr != nil {
		http.Error(w, "row and column must be integers", http.StatusBadRequest)
		return
	}
	if column < 0 || column >= view.ColumnCount() || row < 0 || row >= view.RowCount() {
		http.Error(w, "cell index out of range", http.StatusBadRequest)
		return
	}

	// A refresh between the bounds check and ValueAt can shrink the table;
	// the resulting index panic is handled by RecoveryMiddleware.
	value := view.ValueAt(row, column)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"column": view.ColumnName(column),
		"value":  value,
	})
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.state.Metrics().Snapshot())
}

/* ---------------- GET /admin/peers ---------------- */

func (h *Handler) GetPeers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.state.Peers().Snapshot())
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := h.analyzer.Analyze()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

/* ---------------- GET /internal/heartbeat ---------------- */

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"node_id":    h.state.ID(),
		"started_at": h.state.StartTime().UTC().Format(time.RFC3339),
	})
}
