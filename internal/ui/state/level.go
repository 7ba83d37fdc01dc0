// Package state holds the overlay menu state: the item list, the fuzzy
// filter over it and the cursor and viewport within the filtered items.
package state

import "github.com/atomicstack/sview/internal/menu"

// Level is one open menu. Full holds every item; Items the ones matching
// Query.
type Level struct {
	ID     string
	Title  string
	Items  []menu.Item
	Full   []menu.Item
	Query  Query
	Cursor int
	Offset int
	Data   any

	// cursor to restore once the query is cleared, or -1
	saved int
}

// NewLevel builds a level over the items of m with the cursor on the first
// item.
func NewLevel(m menu.Menu) *Level {
	l := &Level{ID: m.ID, Title: m.Title, saved: -1}
	l.Full = append([]menu.Item(nil), m.Items...)
	l.Items, _ = Match(l.Full, "")
	return l
}

// Filter returns the current query text.
func (l *Level) Filter() string {
	return l.Query.String()
}

// IndexOf returns the index of the item with the given id among the
// filtered items, or -1.
func (l *Level) IndexOf(id string) int {
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (l *Level) Current() (menu.Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return menu.Item{}, false
	}
	return l.Items[l.Cursor], true
}

// Replace swaps in a rebuilt menu, keeping the query and, when it survives,
// the item under the cursor.
func (l *Level) Replace(m menu.Menu) {
	current, ok := l.Current()
	l.Title = m.Title
	l.Full = append([]menu.Item(nil), m.Items...)
	l.Items, _ = Match(l.Full, l.Query.String())
	if idx := l.IndexOf(current.ID); ok && idx >= 0 {
		l.Cursor = idx
	}
	l.clamp()
}

// EditQuery applies fn to the query and refilters when the text changed.
// It reports whether the text changed.
func (l *Level) EditQuery(fn func(*Query) bool) bool {
	before := l.Query.String()
	if !fn(&l.Query) {
		return false
	}
	after := l.Query.String()
	if after == before {
		return false
	}
	l.refilter(before, after)
	return true
}

func (l *Level) refilter(before, after string) {
	var best int
	l.Items, best = Match(l.Full, after)
	switch {
	case blank(after) && !blank(before):
		if l.saved >= 0 && l.saved < len(l.Items) {
			l.Cursor = l.saved
		}
		l.saved = -1
	case !blank(after):
		if blank(before) {
			l.saved = l.Cursor
		}
		l.Cursor = 0
		if best >= 0 {
			l.Cursor = best
		}
		l.Offset = 0
	}
	l.clamp()
}
