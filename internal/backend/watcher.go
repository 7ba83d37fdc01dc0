package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/logging/events"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindPartitions Kind = iota
	KindJobs
	KindNodes
	KindBlocks
)

func (k Kind) String() string {
	switch k {
	case KindPartitions:
		return "partitions"
	case KindJobs:
		return "jobs"
	case KindNodes:
		return "nodes"
	case KindBlocks:
		return "blocks"
	default:
		return "unknown"
	}
}

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

const minPollGap = 250 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithBlocks also polls BlueGene blocks.
func WithBlocks(enabled bool) Option {
	return func(w *Watcher) { w.blocks = enabled }
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.timeout = d }
}

// Watcher polls a cluster source at a fixed interval and publishes events.
type Watcher struct {
	source   cluster.Source
	interval time.Duration
	timeout  time.Duration
	blocks   bool

	ctx    context.Context
	cancel context.CancelFunc

	events  chan Event
	pokes   []chan struct{}
	wg      sync.WaitGroup
	pokeMux sync.Mutex
}

// NewWatcher creates a backend watcher that polls source every interval.
func NewWatcher(source cluster.Source, interval time.Duration, opts ...Option) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source:   source,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.start(KindPartitions, func(ctx context.Context) (interface{}, error) {
		return w.source.Partitions(ctx)
	})
	w.start(KindJobs, func(ctx context.Context) (interface{}, error) {
		return w.source.Jobs(ctx)
	})
	w.start(KindNodes, func(ctx context.Context) (interface{}, error) {
		return w.source.Nodes(ctx)
	})
	if w.blocks {
		w.start(KindBlocks, func(ctx context.Context) (interface{}, error) {
			return w.source.Blocks(ctx)
		})
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Poke asks every poller to fetch now, for example after an admin edit.
func (w *Watcher) Poke() {
	w.pokeMux.Lock()
	defer w.pokeMux.Unlock()
	for _, ch := range w.pokes {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Stop cancels the watcher. Pollers exit after their current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) start(kind Kind, fetch func(context.Context) (interface{}, error)) {
	throttle := newThrottle(minPollGap)
	poke := make(chan struct{}, 1)
	w.pokeMux.Lock()
	w.pokes = append(w.pokes, poke)
	w.pokeMux.Unlock()
	w.wg.Add(1)
	go w.poll(kind, poke, func(ctx context.Context) (interface{}, error) {
		if err := throttle.wait(ctx); err != nil {
			return nil, err
		}
		if w.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
			defer cancel()
		}
		return fetch(ctx)
	})
}

func (w *Watcher) poll(kind Kind, poke <-chan struct{}, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		events.Backend.Poll(kind.String(), err)
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-poke:
			if !emit() {
				return
			}
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
