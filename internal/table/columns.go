// Package table turns display descriptors into sortable, editable tables:
// the column set, the backing row store, and the interactive View.
package table

import (
	"errors"
	"fmt"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/natural"
	"github.com/atomicstack/sview/internal/store"
)

// DefaultSortColumn is the column a new store sorts by.
const DefaultSortColumn = 1

var (
	ErrNotPositional = errors.New("descriptor id does not match its position")
	ErrNotEditable   = errors.New("column is not editable")
	ErrEditActive    = errors.New("an edit is already in progress")
	ErrNoSelection   = errors.New("no row selected")
	ErrInvalidChoice = errors.New("value is not one of the column choices")
	ErrSessionClosed = errors.New("edit session already finished")
)

// Renderer is how a column's cells are shown and edited.
type Renderer int

const (
	// RendererDisplay shows the value without editing.
	RendererDisplay Renderer = iota
	// RendererText edits the value as free text.
	RendererText
	// RendererCombo edits by picking one of the column choices.
	RendererCombo
)

func (r Renderer) String() string {
	switch r {
	case RendererText:
		return "text"
	case RendererCombo:
		return "combo"
	default:
		return "display"
	}
}

// Column is one rendered table column.
type Column struct {
	ID       int
	Title    string
	Type     display.Type
	Renderer Renderer
	// HasEntry lets a combo accept text outside Choices.
	HasEntry    bool
	Choices     []string
	Reorderable bool
	Resizable   bool
	Expand      bool
	Sortable    bool
}

// Editable reports whether the column accepts edits.
func (c Column) Editable() bool {
	return c.Renderer != RendererDisplay
}

// BuildColumns returns one column per visible descriptor, in order. Columns
// of unknown type are left out and reported.
func BuildColumns(descs display.Descriptors) []Column {
	cols := make([]Column, 0, descs.Len())
	descs.Each(func(d *display.Descriptor) bool {
		if !d.Visible {
			return true
		}
		if !d.Type.Known() {
			events.Table.UnknownType(d.ID, d.Name, d.Type.String())
			return true
		}
		cols = append(cols, buildColumn(d))
		return true
	})
	return cols
}

func buildColumn(d *display.Descriptor) Column {
	col := Column{
		ID:          d.ID,
		Title:       d.Name,
		Type:        d.Type,
		Renderer:    RendererDisplay,
		Reorderable: true,
		Resizable:   true,
		Expand:      true,
		Sortable:    true,
	}
	if d.Caps.Commit == nil || d.Edit == display.ReadOnly {
		return col
	}
	if choices := d.Choices(); len(choices) > 0 {
		col.Renderer = RendererCombo
		col.HasEntry = d.Edit == display.ComboEntry
		col.Choices = append([]string(nil), choices...)
		return col
	}
	col.Renderer = RendererText
	return col
}

// NewStore allocates a row store whose columns follow descs, registers the
// comparator for each typed column and sorts by DefaultSortColumn ascending.
func NewStore(descs display.Descriptors) (*store.TreeStore, error) {
	if err := descs.Validate(); err != nil {
		return nil, err
	}
	pos := 0
	var err error
	descs.Each(func(d *display.Descriptor) bool {
		if d.ID != pos {
			err = fmt.Errorf("%w: %q has id %d at %d", ErrNotPositional, d.Name, d.ID, pos)
			return false
		}
		pos++
		return true
	})
	if err != nil {
		return nil, err
	}

	st := store.New(descs.Kinds()...)
	descs.Each(func(d *display.Descriptor) bool {
		switch d.Type {
		case display.TypeInt:
			st.SetSortFunc(d.ID, store.CompareInt)
		case display.TypeText:
			st.SetSortFunc(d.ID, CompareText)
		default:
			events.Table.UnknownType(d.ID, d.Name, d.Type.String())
		}
		return true
	})
	st.SetSortColumn(DefaultSortColumn, store.Ascending)
	return st, nil
}

// CompareText orders text column values with the natural comparator; unset
// values sort first.
func CompareText(a, b any) int {
	return natural.CompareOptional(textPtr(a), textPtr(b))
}

func textPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// PruneStale removes every row whose live column holds 0, walking the tree
// once, and returns how many rows went.
func PruneStale(st *store.TreeStore, liveCol int) int {
	removed := st.PruneStale(liveCol)
	events.Table.Pruned(liveCol, removed)
	return removed
}
