package stats

import (
	"fmt"
	"sync/atomic"

	"github.com/algorand/go-deadlock"
)

const (
	NameColumn  = 0
	ValueColumn = 1
)

var columnNames = [...]string{NameColumn: "Name", ValueColumn: "Value"}

// IndexError is the panic value raised by Table accessors for an index
// outside the table. It marks a bug in the caller.
type IndexError struct {
	Kind  string // "row" or "column"
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("stats: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Limit)
}

// Table is the read side of a refreshing model: a fixed Name/Value view over
// the currently published Snapshot.
//
// Every accessor reads the snapshot published at the start of the call.
// While a refresh cycle holds the table lock, accessors block.
type Table struct {
	mu      deadlock.RWMutex
	current Snapshot
	pending atomic.Bool
}

// ColumnCount is always 2.
func (t *Table) ColumnCount() int {
	return len(columnNames)
}

// ColumnName returns "Name" or "Value". Any other index panics with an
// *IndexError.
func (t *Table) ColumnName(column int) string {
	if column < 0 || column >= len(columnNames) {
		panic(&IndexError{Kind: "column", Index: column, Limit: len(columnNames)})
	}
	return columnNames[column]
}

// RowCount returns the size of the published snapshot.
func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.Len()
}

// ValueAt returns the name (column 0) or formatted value (column 1) of row.
// Out-of-range indices, including row == RowCount(), panic with an
// *IndexError.
func (t *Table) ValueAt(row, column int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if row < 0 || row >= t.current.Len() {
		panic(&IndexError{Kind: "row", Index: row, Limit: t.current.Len()})
	}
	switch column {
	case NameColumn:
		return t.current.names[row]
	case ValueColumn:
		return t.current.values[row]
	}
	panic(&IndexError{Kind: "column", Index: column, Limit: len(columnNames)})
}

// Rows copies the whole published snapshot under a single read lock.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.Rows()
}

// publishLocked swaps in s as the published snapshot. The caller holds the
// table lock.
func (t *Table) publishLocked(s Snapshot) {
	t.current = s
}

// RefreshPending reports whether a snapshot was published since the display
// loop last cleared the flag.
func (t *Table) RefreshPending() bool {
	return t.pending.Load()
}

func (t *Table) ClearRefreshPending() {
	t.pending.Store(false)
}

func (t *Table) SetRefreshPending(pending bool) {
	t.pending.Store(pending)
}
