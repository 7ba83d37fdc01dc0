package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/logging"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/go-logr/logr"
)

const (
	DefaultInterval       = 5 * time.Second
	DefaultRefreshTimeout = 10 * time.Second
)

var (
	ErrClosed  = errors.New("popup registry is shut down")
	ErrNoTitle = errors.New("popup needs a title")
)

// Option configures a Registry.
type Option func(*Registry)

// WithInterval sets how long a worker sleeps between refreshes.
func WithInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRefreshTimeout bounds a single refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithNotify registers fn to run after every refresh, outside the lock.
func WithNotify(fn func(*Popup)) Option {
	return func(r *Registry) { r.notify = fn }
}

// WithLogger replaces the package logger.
func WithLogger(log logr.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// Registry owns every live popup. Workers serialise on lock, which is the
// same lock the UI holds during an edit session.
type Registry struct {
	lock     sync.Locker
	interval time.Duration
	timeout  time.Duration
	log      logr.Logger

	ops    sync.Mutex
	mu     sync.Mutex
	popups []*Popup
	notify func(*Popup)
	closed bool
	wg     sync.WaitGroup
}

// NewRegistry returns an empty registry whose workers serialise on lock.
func NewRegistry(lock sync.Locker, opts ...Option) *Registry {
	r := &Registry{
		lock:     lock,
		interval: DefaultInterval,
		timeout:  DefaultRefreshTimeout,
		log:      logging.Logger().WithName("popup"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetNotify replaces the post-refresh callback.
func (r *Registry) SetNotify(fn func(*Popup)) {
	r.mu.Lock()
	r.notify = fn
	r.mu.Unlock()
}

// Interval returns the polling interval.
func (r *Registry) Interval() time.Duration {
	return r.interval
}

// Open creates a popup and starts its worker. A live popup with the same
// title is destroyed first.
func (r *Registry) Open(req Request) (*Popup, error) {
	title := req.Key.Title
	if title == "" {
		return nil, ErrNoTitle
	}
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	closed := r.closed
	old := r.findLocked(title)
	r.mu.Unlock()
	if closed {
		events.Popup.Rejected(title, ErrClosed)
		return nil, ErrClosed
	}
	if old != nil {
		events.Popup.Superseded(title)
		r.destroy(old)
	}

	p, err := newPopup(req, r.lock)
	if err != nil {
		events.Popup.Rejected(title, err)
		return nil, fmt.Errorf("open %q: %w", title, err)
	}

	r.mu.Lock()
	r.popups = append(r.popups, p)
	r.wg.Add(1)
	r.mu.Unlock()

	events.Popup.Open(title, req.Key.Dest.String(), req.Key.RowType)
	r.log.V(1).Info("popup opened", "title", title, "dest", req.Key.Dest.String())
	go r.run(p)
	return p, nil
}

// Close destroys the popup with the given title.
func (r *Registry) Close(title string) bool {
	r.ops.Lock()
	defer r.ops.Unlock()
	p := r.Find(title)
	if p == nil {
		return false
	}
	r.destroy(p)
	return true
}

// Find returns the live popup with the given title, or nil.
func (r *Registry) Find(title string) *Popup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(title)
}

func (r *Registry) findLocked(title string) *Popup {
	for _, p := range r.popups {
		if p.key.Title == title {
			return p
		}
	}
	return nil
}

// Popups returns the live popups in opening order.
func (r *Registry) Popups() []*Popup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Popup(nil), r.popups...)
}

// Len returns the number of live popups.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.popups)
}

// ForceRefresh wakes every popup.
func (r *Registry) ForceRefresh() {
	for _, p := range r.Popups() {
		p.ForceRefresh()
	}
}

// Shutdown destroys every popup, refuses further opens and waits for the
// workers to exit.
func (r *Registry) Shutdown() {
	r.ops.Lock()
	r.mu.Lock()
	r.closed = true
	popups := append([]*Popup(nil), r.popups...)
	r.mu.Unlock()
	for i := len(popups) - 1; i >= 0; i-- {
		r.destroy(popups[i])
	}
	r.ops.Unlock()
	r.wg.Wait()
}

// destroy cancels the worker, tears the popup down while holding the UI lock
// and drops it from the list. It always succeeds.
func (r *Registry) destroy(p *Popup) {
	p.cancel()
	p.view.Close()
	r.lock.Lock()
	p.teardown()
	r.lock.Unlock()

	r.mu.Lock()
	for i, cur := range r.popups {
		if cur == p {
			r.popups = append(r.popups[:i], r.popups[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	events.Popup.Close(p.key.Title)
}

func (r *Registry) run(p *Popup) {
	defer r.wg.Done()
	defer close(p.done)
	defer events.Popup.WorkerExit(p.key.Title)

	timer := time.NewTimer(r.interval)
	defer timer.Stop()
	for {
		if p.ctx.Err() != nil {
			return
		}
		r.lock.Lock()
		if p.ctx.Err() != nil {
			r.lock.Unlock()
			return
		}
		forced := p.force.Swap(false)
		select {
		case <-p.wake:
		default:
		}
		r.refreshOnce(p, forced)
		r.lock.Unlock()

		r.mu.Lock()
		notify := r.notify
		r.mu.Unlock()
		if notify != nil {
			notify(p)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(r.interval)
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
		case <-timer.C:
		}
	}
}

func (r *Registry) refreshOnce(p *Popup, forced bool) {
	if p.refresh == nil {
		p.record(nil)
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(p.ctx, r.timeout)
	defer cancel()
	err := p.refresh(ctx, p)
	p.record(err)
	if err != nil {
		events.Popup.RefreshFailed(p.key.Title, err)
		return
	}
	events.Popup.Refresh(p.key.Title, time.Since(start), forced)
}
