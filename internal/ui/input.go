package ui

import (
	"unicode"

	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/theme"
	uistate "github.com/atomicstack/sview/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// handleMenuFilterKey edits the filter of the open menu. It reports whether
// the key was consumed.
func (m *Model) handleMenuFilterKey(msg tea.KeyMsg) bool {
	current := m.currentLevel()
	if current == nil {
		return false
	}
	switch msg.String() {
	case "ctrl+u":
		return m.editMenuFilter(current, (*uistate.Query).Clear)
	case "ctrl+w":
		return m.editMenuFilter(current, (*uistate.Query).DeleteWord)
	case "ctrl+a":
		return current.Query.Home()
	case "ctrl+e":
		return current.Query.End()
	case "alt+b":
		return current.Query.WordLeft()
	case "alt+f":
		return current.Query.WordRight()
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.editMenuFilter(current, (*uistate.Query).Backspace)
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		text := string(msg.Runes)
		return m.editMenuFilter(current, func(q *uistate.Query) bool { return q.Insert(text) })
	case tea.KeySpace:
		return m.editMenuFilter(current, func(q *uistate.Query) bool { return q.Insert(" ") })
	case tea.KeyLeft:
		return current.Query.Left()
	case tea.KeyRight:
		return current.Query.Right()
	}
	return false
}

func (m *Model) editMenuFilter(l *level, edit func(*uistate.Query) bool) bool {
	if !l.EditQuery(edit) {
		return false
	}
	m.filterChanged(l)
	return true
}

func (m *Model) filterChanged(l *level) {
	m.errMsg = ""
	if f := l.Filter(); f == "" {
		events.Filter.Cleared(l.ID)
	} else {
		events.Filter.Set(l.ID, f)
	}
	m.syncViewport(l)
}

// menuFilterLine renders the filter of the open menu with a block caret.
func (m *Model) menuFilterLine() string {
	current := m.currentLevel()
	if current == nil {
		return ""
	}
	prompt := theme.Render(styles.FilterPrompt, "/ ")
	runes := []rune(current.Filter())
	if len(runes) == 0 {
		return prompt + theme.Render(styles.Note, "(type to filter)")
	}
	pos := current.Query.Pos()
	caret := " "
	after := ""
	if pos < len(runes) {
		caret = string(runes[pos])
		after = string(runes[pos+1:])
	}
	caretStyle := styles.Filter
	if caretStyle != nil {
		reversed := caretStyle.Reverse(true)
		caretStyle = &reversed
	}
	return prompt +
		theme.Render(styles.Filter, string(runes[:pos])) +
		theme.Render(caretStyle, caret) +
		theme.Render(styles.Filter, after)
}
