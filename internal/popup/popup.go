// Package popup keeps the set of live detail views. Every popup owns its own
// table and a worker goroutine that refreshes it under the shared UI lock
// until the popup is closed.
package popup

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/menu"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Key identifies a popup. Title is unique among live popups.
type Key struct {
	RowType int
	Dest    display.Category
	Title   string
}

// Request describes a popup to open.
type Request struct {
	Key      Key
	Identity string
	Origin   display.Category
	Columns  display.Descriptors
	Refresh  display.RefreshFunc
}

const (
	partFrame   = "frame"
	partTitle   = "title"
	partRefresh = "refresh"
	partTable   = "table"
)

type part struct {
	name    string
	release func()
}

// Popup is one live detail view. It implements display.Target for its
// refresh function.
type Popup struct {
	key      Key
	identity string
	origin   display.Category
	descs    display.Descriptors
	store    *store.TreeStore
	view     *table.View
	refresh  display.RefreshFunc

	ctx    context.Context
	cancel context.CancelFunc
	force  atomic.Bool
	wake   chan struct{}
	done   chan struct{}

	parts    []part
	torn     []string
	tornOnce sync.Once

	refreshes atomic.Int64
	mu        sync.Mutex
	err       error
	last      time.Time
}

func newPopup(req Request, lock sync.Locker) (*Popup, error) {
	descs := req.Columns.Clone()
	st, err := table.NewStore(descs)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Popup{
		key:      req.Key,
		identity: req.Identity,
		origin:   req.Origin,
		descs:    descs,
		store:    st,
		refresh:  req.Refresh,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	p.view = table.NewView(descs, st, lock)
	p.addPart(partFrame, nil)
	p.addPart(partTitle, nil)
	p.addPart(partRefresh, func() { p.force.Store(false) })
	p.addPart(partTable, func() {
		p.view.Close()
		st.Clear()
	})
	return p, nil
}

func (p *Popup) addPart(name string, release func()) {
	p.parts = append(p.parts, part{name: name, release: release})
}

// teardown releases every part, children before parents.
func (p *Popup) teardown() {
	p.tornOnce.Do(func() {
		for i := len(p.parts) - 1; i >= 0; i-- {
			pt := p.parts[i]
			if pt.release != nil {
				pt.release()
			}
			p.torn = append(p.torn, pt.name)
			events.Popup.Teardown(p.key.Title, pt.name)
		}
	})
}

func (p *Popup) Title() string              { return p.key.Title }
func (p *Popup) Identity() string           { return p.identity }
func (p *Popup) Category() display.Category { return p.key.Dest }
func (p *Popup) Origin() display.Category   { return p.origin }
func (p *Popup) Store() *store.TreeStore    { return p.store }
func (p *Popup) Columns() display.Descriptors {
	return p.descs
}

// Key returns the popup identity.
func (p *Popup) Key() Key {
	return p.key
}

// View returns the popup table.
func (p *Popup) View() *table.View {
	return p.view
}

// Live reports whether the popup has not been closed.
func (p *Popup) Live() bool {
	return p.ctx.Err() == nil
}

// Done is closed once the refresh worker has exited.
func (p *Popup) Done() <-chan struct{} {
	return p.done
}

// Refreshes counts completed refresh cycles, failed ones included.
func (p *Popup) Refreshes() int64 {
	return p.refreshes.Load()
}

// Err returns the error of the last refresh, or nil.
func (p *Popup) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// LastRefresh returns when the last refresh finished.
func (p *Popup) LastRefresh() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// ForceRefresh asks the worker to refresh now instead of waiting for the
// interval.
func (p *Popup) ForceRefresh() {
	if !p.Live() {
		return
	}
	p.force.Store(true)
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// FieldsMenu lists the popup's columns. Toggling one rebuilds the table and
// forces a refresh so the new column fills in.
func (p *Popup) FieldsMenu() menu.Menu {
	return menu.BuildVisibilityMenu("popup-fields", p.key.Title, p.descs, func(*display.Descriptor) tea.Cmd {
		p.view.Rebuild()
		p.ForceRefresh()
		return nil
	})
}

func (p *Popup) record(err error) {
	p.refreshes.Add(1)
	p.mu.Lock()
	p.err = err
	p.last = time.Now()
	p.mu.Unlock()
}
