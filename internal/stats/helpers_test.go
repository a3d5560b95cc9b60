package stats

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"
)

// mapSource is a fixed counter source.
type mapSource map[string]int64

func (m mapSource) Snapshot() map[string]int64 {
	return maps.Clone(m)
}

// generationSource returns a new key set on every read; every key and value
// carries the read's generation number.
type generationSource struct {
	gen atomic.Int64
}

func (g *generationSource) Snapshot() map[string]int64 {
	n := g.gen.Add(1)
	return map[string]int64{
		fmt.Sprintf("g%06d-a", n): n,
		fmt.Sprintf("g%06d-b", n): n,
		fmt.Sprintf("g%06d-c", n): n,
	}
}

// memWriter records persisted snapshots.
type memWriter struct {
	mu    sync.Mutex
	saved []Snapshot
	err   error
}

func (w *memWriter) Persist(s Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved = append(w.saved, s)
	return w.err
}

// gateWriter blocks inside Persist until release is closed.
type gateWriter struct {
	entered chan struct{}
	release chan struct{}
}

func newGateWriter() *gateWriter {
	return &gateWriter{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (w *gateWriter) Persist(Snapshot) error {
	w.entered <- struct{}{}
	<-w.release
	return nil
}

func english() *Formatter {
	return NewFormatter(language.English)
}

// publish swaps in s the way a refresh cycle does, under the table lock.
func publish(table *Table, s Snapshot) {
	table.mu.Lock()
	defer table.mu.Unlock()
	table.publishLocked(s)
}
