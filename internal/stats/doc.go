// Package stats republishes a node's live counters as an ordered Name/Value
// table.
//
// A refresh cycle runs on every node-data-changed event. It drains a counter
// source into a fresh Snapshot, swaps that snapshot into a Table, writes it
// to a tab-separated file and raises the table's refresh-pending flag for the
// display loop. Readers only ever see a fully built snapshot.
//
// Lock order: the node-state lock is always taken before the table lock, and
// both are taken in exactly one place, Model.NodeDataChanged.
package stats
