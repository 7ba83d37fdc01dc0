package table

import (
	"fmt"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/store"
)

// Session is an in-progress cell edit. While it is open the view holds the
// shared UI lock, so no refresh can change rows underneath the edit.
type Session struct {
	view    *View
	column  Column
	commit  display.EditCommit
	data    any
	row     *store.Row
	initial string
	closed  bool
}

// BeginEdit opens an edit on the selected cell. It blocks until the shared
// lock is free, which is at most one in-flight refresh.
func (v *View) BeginEdit() (*Session, error) {
	if v.session != nil {
		return nil, ErrEditActive
	}
	row := v.Selected()
	col, ok := v.CurrentColumn()
	if row == nil || !ok {
		return nil, ErrNoSelection
	}
	if !col.Editable() {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, col.Title)
	}
	desc, ok := v.descs.Find(col.ID)
	if !ok || desc.Caps.Commit == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, col.Title)
	}

	v.lock.Lock()
	if !v.store.Contains(row) {
		v.lock.Unlock()
		return nil, ErrNoSelection
	}
	s := &Session{
		view:    v,
		column:  col,
		commit:  desc.Caps.Commit,
		data:    desc.Data,
		row:     row,
		initial: v.store.Text(row, col.ID),
	}
	v.session = s
	events.Table.EditBegin(col.ID, col.Title)
	return s, nil
}

// Editing returns the open session, or nil.
func (v *View) Editing() *Session {
	return v.session
}

// Column returns the column being edited.
func (s *Session) Column() Column {
	return s.column
}

// Row returns the row being edited.
func (s *Session) Row() *store.Row {
	return s.row
}

// Initial returns the cell text when the edit began.
func (s *Session) Initial() string {
	return s.initial
}

// Commit hands value to the column's commit callback and ends the session.
// The lock is released whether or not the callback succeeds.
func (s *Session) Commit(value string) error {
	if s.closed {
		return ErrSessionClosed
	}
	defer s.release()
	if s.column.Renderer == RendererCombo && !s.column.HasEntry && !contains(s.column.Choices, value) {
		err := fmt.Errorf("%w: %q", ErrInvalidChoice, value)
		events.Table.EditCommit(s.column.ID, value, err)
		return err
	}
	err := s.commit(display.Edit{
		Column: s.column.ID,
		Value:  value,
		Store:  s.view.store,
		Row:    s.row,
		Data:   s.data,
	})
	events.Table.EditCommit(s.column.ID, value, err)
	return err
}

// Cancel ends the session without committing.
func (s *Session) Cancel() {
	if s.closed {
		return
	}
	events.Table.EditCancel(s.column.ID)
	s.release()
}

func (s *Session) release() {
	if s.closed {
		return
	}
	s.closed = true
	if s.view.session == s {
		s.view.session = nil
	}
	s.view.lock.Unlock()
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
