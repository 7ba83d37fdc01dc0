package ui

import (
	"fmt"

	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/table"
	tea "github.com/charmbracelet/bubbletea"
)

// editState is an open cell edit. The session holds the shared lock until it
// is committed or cancelled.
type editState struct {
	session *table.Session
	view    *table.View
	title   string
	choices []string
	choice  int
}

func (e *editState) column() table.Column {
	return e.session.Column()
}

// beginEdit opens an edit on the focused cell. Combo columns without free
// entry cycle through their choices instead of taking typed text.
func (m *Model) beginEdit() tea.Cmd {
	if m.edit != nil {
		return nil
	}
	s := m.focused()
	if s.view == nil {
		return nil
	}
	if col, ok := s.view.CurrentColumn(); ok && !col.Editable() {
		return m.fail(fmt.Errorf("%w: %s", table.ErrNotEditable, col.Title))
	}
	session, err := s.view.BeginEdit()
	if err != nil {
		return m.fail(err)
	}
	col := session.Column()
	m.edit = &editState{
		session: session,
		view:    s.view,
		title:   s.title,
		choices: col.Choices,
		choice:  indexOf(col.Choices, session.Initial()),
	}
	m.mode = ModeEdit
	m.errMsg = ""
	m.infoMsg = ""
	m.input.SetValue(session.Initial())
	m.input.CursorEnd()
	return m.input.Focus()
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	if m.edit == nil {
		m.mode = ModeTable
		return nil
	}
	switch msg.String() {
	case "esc":
		m.cancelEdit()
		return nil
	case "ctrl+c":
		m.cancelEdit()
		return tea.Quit
	case "enter":
		return m.commitEdit()
	case "tab", "down":
		m.cycleChoice(1)
		return nil
	case "shift+tab", "up":
		m.cycleChoice(-1)
		return nil
	}
	if m.edit.column().Renderer == table.RendererCombo && !m.edit.column().HasEntry {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) cycleChoice(delta int) {
	n := len(m.edit.choices)
	if n == 0 {
		return
	}
	idx := m.edit.choice + delta
	if m.edit.choice < 0 && delta < 0 {
		idx = n - 1
	}
	idx = (idx%n + n) % n
	m.edit.choice = idx
	m.input.SetValue(m.edit.choices[idx])
	m.input.CursorEnd()
}

func (m *Model) commitEdit() tea.Cmd {
	e := m.edit
	value := m.input.Value()
	row := e.session.Row()
	col := e.column()
	err := e.session.Commit(value)
	m.endEdit()
	if err != nil {
		return m.fail(fmt.Errorf("%s: %w", col.Title, err))
	}
	m.lock.Lock()
	stored := e.view.Store().Text(row, col.ID)
	m.lock.Unlock()
	return m.note(fmt.Sprintf("%s set to %s", col.Title, stored))
}

// cancelEdit drops an open edit and releases the shared lock.
func (m *Model) cancelEdit() {
	if m.edit == nil {
		return
	}
	m.edit.session.Cancel()
	m.endEdit()
}

func (m *Model) endEdit() {
	m.edit = nil
	m.input.Blur()
	m.input.SetValue("")
	m.mode = ModeTable
	m.flushDeferred()
}

// beginFilter edits the row filter of the focused table. The filter applies
// as it is typed.
func (m *Model) beginFilter() {
	s := m.focused()
	if s.view == nil {
		return
	}
	m.filterView = s.view
	m.filterScope = s.title
	m.mode = ModeFilter
	m.input.SetValue(s.view.Filter())
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	v := m.filterView
	if v == nil {
		m.mode = ModeTable
		return nil
	}
	switch msg.String() {
	case "esc":
		v.SetFilter("")
		events.Filter.Cleared(m.filterScope)
		m.endFilter()
		return nil
	case "enter":
		m.endFilter()
		return nil
	case "ctrl+c":
		m.endFilter()
		return tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != v.Filter() {
		v.SetFilter(value)
		if value == "" {
			events.Filter.Cleared(m.filterScope)
		} else {
			events.Filter.Set(m.filterScope, value)
		}
	}
	return cmd
}

func (m *Model) endFilter() {
	m.filterView = nil
	m.filterScope = ""
	m.input.Blur()
	m.input.SetValue("")
	m.mode = ModeTable
}
