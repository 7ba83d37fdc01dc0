package pages

import (
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/store"
)

// Target is the refresh context of a main page table. It has no origin, so
// a refresh shows every object of its category.
type Target struct {
	category display.Category
	store    *store.TreeStore
	columns  display.Descriptors
}

var _ display.Target = (*Target)(nil)

// NewTarget wraps a main page table.
func NewTarget(c display.Category, st *store.TreeStore, columns display.Descriptors) *Target {
	return &Target{category: c, store: st, columns: columns}
}

func (t *Target) Title() string                { return Name(t.category) }
func (t *Target) Identity() string             { return "" }
func (t *Target) Category() display.Category   { return t.category }
func (t *Target) Origin() display.Category     { return display.None }
func (t *Target) Store() *store.TreeStore      { return t.store }
func (t *Target) Columns() display.Descriptors { return t.columns }
