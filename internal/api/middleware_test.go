package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"node-stats/internal/logs"
	"node-stats/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("Panic", func(t *testing.T) {
		logger := logs.NewLogger(10, logs.DEBUG)
		panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom!")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		RecoveryMiddleware(logger)(panicHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal server error")

		entries := logger.GetLast(1)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Message, "panic recovered")
	})

	t.Run("TableIndexPanic", func(t *testing.T) {
		logger := logs.NewLogger(10, logs.DEBUG)
		renderHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			table := &stats.Table{}
			_, _ = w.Write([]byte(table.ValueAt(table.RowCount(), 0)))
		})

		req := httptest.NewRequest(http.MethodGet, "/stats/ApiCallModel", nil)
		rr := httptest.NewRecorder()
		RecoveryMiddleware(logger)(renderHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		entries := logger.GetLast(1)
		require.Len(t, entries, 1)
		assert.Equal(t, logs.ERROR, entries[0].Level)
		assert.Contains(t, entries[0].Message, "render aborted")
		assert.Contains(t, entries[0].Message, "row index 0 out of range [0,0)")
	})
}

func TestChain(t *testing.T) {
	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test", "true")
			next.ServeHTTP(w, r)
		})
	}

	chained := Chain(finalHandler, mw)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	chained.ServeHTTP(rr, req)

	assert.Equal(t, "true", rr.Header().Get("X-Test"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

type countingRecorder struct {
	names []string
}

func (c *countingRecorder) RecordAPICall(name string) {
	c.names = append(c.names, name)
}

func TestCountAPICalls(t *testing.T) {
	rec := &countingRecorder{}
	handler := CountAPICalls(rec, "stats")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/ApiCallModel", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	}

	assert.Equal(t, []string{"stats", "stats", "stats"}, rec.names)
}

func TestLoggingMiddleware(t *testing.T) {
	logger := logs.NewLogger(10, logs.DEBUG)
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logger.GetLast(1)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "GET /health 418")
}
