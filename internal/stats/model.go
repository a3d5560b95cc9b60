package stats

import (
	"path/filepath"
	"sync"

	"node-stats/internal/logs"
	"node-stats/internal/peers"
)

// RefreshingModel is a table that rebuilds itself on node-data-changed
// events and tells a display loop when it has done so.
type RefreshingModel interface {
	NodeDataChanged(state sync.Locker, peerSet []peers.Peer) error
	ThreadLabel() string
	RefreshPending() bool
	SetRefreshPending(pending bool)
}

// Model is a RefreshingModel over one counter source. Its embedded Table is
// the read interface for display components.
type Model struct {
	*Table

	name       string
	source     CounterSource
	aggregator *Aggregator
	writer     SnapshotWriter
	logger     *logs.Logger
}

var _ RefreshingModel = (*Model)(nil)

// NewModel creates a model named name that aggregates source and persists
// every snapshot through writer.
func NewModel(
	name string,
	source CounterSource,
	aggregator *Aggregator,
	writer SnapshotWriter,
	logger *logs.Logger,
) *Model {
	return &Model{
		Table:      &Table{},
		name:       name,
		source:     source,
		aggregator: aggregator,
		writer:     writer,
		logger:     logger,
	}
}

// NewApiCallModel reports the API calls served by the node, persisted to
// ApiCallModel.txt under dir.
func NewApiCallModel(apiCalls CounterSource, dir string, format *Formatter, logger *logs.Logger) *Model {
	return newFileModel("ApiCallModel", apiCalls, dir, format, logger)
}

// NewNodeMetricsModel reports the node's operational metrics, persisted to
// NodeMetricsModel.txt under dir.
func NewNodeMetricsModel(nodeMetrics CounterSource, dir string, format *Formatter, logger *logs.Logger) *Model {
	return newFileModel("NodeMetricsModel", nodeMetrics, dir, format, logger)
}

func newFileModel(name string, source CounterSource, dir string, format *Formatter, logger *logs.Logger) *Model {
	writer := NewFileWriter(filepath.Join(dir, name+".txt"))
	return NewModel(name, source, NewAggregator(format), writer, logger)
}

func (m *Model) Name() string {
	return m.name
}

// ThreadLabel names the refresh cycle in logs.
func (m *Model) ThreadLabel() string {
	return m.name + ".Refresh"
}

// NodeDataChanged runs one refresh cycle.
//
// state is the node-state lock guarding the counter source. It is held for
// the whole cycle, with the table lock nested inside it, so counter updates
// and readers both wait for the cycle to finish. The new snapshot stays
// published when persisting it fails; the error is returned and the refresh
// flag is left untouched for that cycle.
func (m *Model) NodeDataChanged(state sync.Locker, peerSet []peers.Peer) error {
	m.logger.Tracef("STARTED %s nodeDataChanged count:%d", m.ThreadLabel(), len(peerSet))

	state.Lock()
	defer state.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.publishLocked(m.aggregator.Refresh(m.source))

	if err := m.writer.Persist(m.current); err != nil {
		m.logger.Errorf("%s: snapshot persist failed: %v", m.ThreadLabel(), err)
		return err
	}

	m.pending.Store(true)
	m.logger.Tracef("SUCCESS %s nodeDataChanged rows:%d", m.ThreadLabel(), m.current.Len())
	return nil
}
