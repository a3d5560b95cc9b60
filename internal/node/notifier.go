package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"

	"node-stats/internal/logs"
	"node-stats/internal/metrics"
	"node-stats/internal/peers"
)

// Listener receives node-data-changed events. It is satisfied by
// stats.RefreshingModel.
type Listener interface {
	NodeDataChanged(state sync.Locker, peerSet []peers.Peer) error
	ThreadLabel() string
}

// Event is one queued node data change.
type Event struct {
	Reason string
	At     time.Time
}

// Notifier queues node data changes and runs the listeners' refresh cycles
// on a single goroutine, so cycles never overlap. Events that arrive while a
// cycle is running are coalesced into the next one.
type Notifier struct {
	state    *State
	logger   *logs.Logger
	interval time.Duration

	mu        sync.Mutex
	events    *queue.Queue
	listeners []Listener

	wake chan struct{}
}

// NewNotifier creates a notifier for state and registers it as the state's
// change hook. A positive interval also queues a "resync" event on every
// tick so listeners refresh even while the node is idle.
func NewNotifier(state *State, interval time.Duration, logger *logs.Logger) *Notifier {
	n := &Notifier{
		state:    state,
		logger:   logger,
		interval: interval,
		events:   queue.New(),
		wake:     make(chan struct{}, 1),
	}
	state.OnChange(n.Notify)
	return n
}

// Subscribe adds l to the listeners run on every dispatch.
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Notify queues a change event and wakes the dispatcher.
func (n *Notifier) Notify(reason string) {
	n.mu.Lock()
	n.events.Add(Event{Reason: reason, At: time.Now()})
	n.mu.Unlock()

	n.state.Metrics().Inc(metrics.RefreshEventsTotal)

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued events.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events.Length()
}

// Run dispatches queued events until ctx is cancelled or a refresh cycle
// fails. A failed cycle is fatal: Run returns its error and stops.
func (n *Notifier) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if n.interval > 0 {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-n.wake:
		case <-tick:
			n.Notify("resync")
		case <-ctx.Done():
			n.logger.Debugf("notifier stopped with %d event(s) pending", n.Pending())
			return ctx.Err()
		}

		if err := n.Dispatch(); err != nil {
			return err
		}
	}
}

// Dispatch drains the queue and, if anything was queued, runs one refresh
// cycle per listener. It returns the first listener error.
func (n *Notifier) Dispatch() error {
	n.mu.Lock()
	drained := n.events.Length()
	var oldest Event
	if drained > 0 {
		oldest = n.events.Peek().(Event)
	}
	for n.events.Length() > 0 {
		n.events.Remove()
	}
	listeners := append([]Listener(nil), n.listeners...)
	n.mu.Unlock()

	if drained == 0 {
		return nil
	}

	reg := n.state.Metrics()
	reg.Add(metrics.RefreshCoalescedTotal, int64(drained-1))
	reg.Set(metrics.UptimeSeconds, n.state.DurationInSeconds(time.Now()))

	peerSet := n.state.Peers().Snapshot()
	n.logger.Tracef("dispatching %d event(s), oldest %q queued %s ago", drained, oldest.Reason, time.Since(oldest.At))

	for _, l := range listeners {
		reg.Inc(metrics.RefreshCyclesTotal)
		if err := l.NodeDataChanged(n.state, peerSet); err != nil {
			reg.Inc(metrics.RefreshFailuresTotal)
			return fmt.Errorf("%s: %w", l.ThreadLabel(), err)
		}
	}
	return nil
}
