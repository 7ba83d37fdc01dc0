package ui

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging"
	"github.com/atomicstack/sview/internal/pages"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/table"
)

// page is one main tab: a table over every object of a category.
type page struct {
	category  display.Category
	descs     display.Descriptors
	store     *store.TreeStore
	view      *table.View
	target    *pages.Target
	refreshed time.Time
	err       error
	stale     bool
}

func newPage(book *pages.Book, c display.Category, lock sync.Locker) (*page, error) {
	descs := book.Columns(c)
	st, err := table.NewStore(descs)
	if err != nil {
		return nil, err
	}
	return &page{
		category: c,
		descs:    descs,
		store:    st,
		view:     table.NewView(descs, st, lock),
		target:   pages.NewTarget(c, st, descs),
	}, nil
}

func (p *page) title() string {
	return pages.Name(p.category)
}

// refreshPage refills p from the cache under the shared lock. While an edit
// session holds the lock the page is only marked stale.
func (m *Model) refreshPage(p *page) {
	if p == nil {
		return
	}
	if m.edit != nil {
		p.stale = true
		return
	}
	m.lock.Lock()
	err := m.book.Refresh(context.Background(), p.target)
	m.lock.Unlock()
	p.stale = false
	p.err = err
	if err != nil {
		logging.Debug("page refresh failed", "page", p.title(), "error", err.Error())
		return
	}
	p.refreshed = time.Now()
}

func (m *Model) refreshStale() {
	for _, p := range m.pages {
		if p.stale {
			m.refreshPage(p)
		}
	}
}

func (m *Model) pageFor(c display.Category) *page {
	for _, p := range m.pages {
		if p.category == c {
			return p
		}
	}
	return nil
}

func (m *Model) activePage() *page {
	if m.active < 0 || m.active >= len(m.pages) {
		return nil
	}
	return m.pages[m.active]
}

// ActivePage returns the category of the page shown.
func (m *Model) ActivePage() display.Category {
	if p := m.activePage(); p != nil {
		return p.category
	}
	return display.None
}

func (m *Model) selectPage(c display.Category) bool {
	for i, p := range m.pages {
		if p.category == c {
			m.active = i
			m.focus = ""
			return true
		}
	}
	return false
}

func (m *Model) cyclePage(delta int) {
	if len(m.pages) == 0 {
		return
	}
	m.active = (m.active + delta + len(m.pages)) % len(m.pages)
	m.focus = ""
}
