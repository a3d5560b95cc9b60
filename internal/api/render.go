package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"node-stats/internal/logs"
)

const writeTimeout = 5 * time.Second

// tableFrame is the JSON form of a rendered table.
type tableFrame struct {
	Model   string     `json:"model"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// renderTable reads the whole table through one Rows call, so a frame never
// mixes two snapshots.
func renderTable(view TableView) tableFrame {
	frame := tableFrame{
		Model:   view.Name(),
		Columns: make([]string, view.ColumnCount()),
	}
	for i := range frame.Columns {
		frame.Columns[i] = view.ColumnName(i)
	}

	rows := view.Rows()
	frame.Rows = make([][]string, len(rows))
	for i, row := range rows {
		frame.Rows[i] = []string{row.Name, row.Value}
	}
	return frame
}

// renderLoop is the display loop of one view: it polls the view's refresh
// flag, clears it, and fans the re-rendered table out to subscribers.
type renderLoop struct {
	view     TableView
	interval time.Duration
	logger   *logs.Logger

	mu   sync.Mutex
	subs map[chan tableFrame]struct{}
}

func newRenderLoop(view TableView, interval time.Duration, logger *logs.Logger) *renderLoop {
	return &renderLoop{
		view:     view,
		interval: interval,
		logger:   logger,
		subs:     make(map[chan tableFrame]struct{}),
	}
}

func (l *renderLoop) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.renderIfPending()
		case <-ctx.Done():
			return
		}
	}
}

// renderIfPending reports whether a new frame was broadcast.
func (l *renderLoop) renderIfPending() bool {
	if !l.view.RefreshPending() {
		return false
	}
	l.view.ClearRefreshPending()
	frame := renderTable(l.view)

	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		// Slow subscribers only get the latest frame.
		select {
		case ch <- frame:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- frame
		}
	}
	return true
}

func (l *renderLoop) subscribe() (<-chan tableFrame, func()) {
	ch := make(chan tableFrame, 1)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	return ch, func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
	}
}

/* ---------------- GET /ws/stats/{model} ---------------- */

// StreamStats sends the current table on connect and every re-rendered
// table after that.
func (h *Handler) StreamStats(w http.ResponseWriter, r *http.Request) {
	loop, ok := h.view(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade for %s: %v", loop.view.Name(), err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	h.logger.Debugf("stream %s opened for %s", connID, loop.view.Name())
	defer h.logger.Debugf("stream %s closed", connID)

	frames, unsubscribe := loop.subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, renderTable(loop.view)); err != nil {
		return
	}
	for {
		select {
		case frame := <-frames:
			if err := writeFrame(conn, frame); err != nil {
				h.logger.Debugf("stream %s write: %v", connID, err)
				return
			}
		case <-closed:
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame tableFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
