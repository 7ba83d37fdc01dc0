package ui

import (
	"github.com/atomicstack/sview/internal/table"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch m.mode {
	case ModeEdit:
		return m.handleEditKey(keyMsg)
	case ModeFilter:
		return m.handleFilterKey(keyMsg)
	case ModeMenu:
		return m.handleMenuKey(keyMsg)
	default:
		return m.handleTableKey(keyMsg)
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	current := m.currentLevel()
	if current == nil {
		m.mode = ModeTable
		return nil
	}
	switch msg.String() {
	case "ctrl+c":
		m.closeMenus()
		return tea.Quit
	case "esc":
		m.popMenu()
		return nil
	case "enter":
		return m.activateMenuItem()
	case "up", "ctrl+p":
		current.Move(-1)
	case "down", "ctrl+n":
		current.Move(1)
	case "pgup":
		current.Page(-1, m.menuRows())
	case "pgdown":
		current.Page(1, m.menuRows())
	case "home":
		current.Home()
	case "end":
		current.End()
	default:
		m.handleMenuFilterKey(msg)
		return nil
	}
	m.syncViewport(current)
	return nil
}

func (m *Model) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	s := m.focused()
	if s.view == nil {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return nil
	}
	v := s.view
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		v.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		v.MoveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		v.MoveCursor(-m.tableRows())
	case key.Matches(msg, m.keys.PageDown):
		v.MoveCursor(m.tableRows())
	case key.Matches(msg, m.keys.Home):
		v.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		v.SetCursor(len(v.Lines()) - 1)
	case key.Matches(msg, m.keys.Left):
		v.MoveColumnCursor(-1)
	case key.Matches(msg, m.keys.Right):
		v.MoveColumnCursor(1)
	case key.Matches(msg, m.keys.MoveLeft):
		v.MoveColumn(-1)
	case key.Matches(msg, m.keys.MoveRight):
		v.MoveColumn(1)
	case key.Matches(msg, m.keys.Wider):
		v.Resize(1)
	case key.Matches(msg, m.keys.Narrower):
		v.Resize(-1)
	case key.Matches(msg, m.keys.Sort):
		v.SortCurrent()
	case key.Matches(msg, m.keys.Expand):
		if row := v.Selected(); row != nil {
			v.Toggle(row)
		}
	case key.Matches(msg, m.keys.Options):
		return m.openContextMenu(v.Selected())
	case key.Matches(msg, m.keys.Info):
		return m.openInfo(v.Selected())
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit()
	case key.Matches(msg, m.keys.Filter):
		m.beginFilter()
	case key.Matches(msg, m.keys.Fields):
		return m.openMenuByID("fields")
	case key.Matches(msg, m.keys.Pages):
		return m.openMenuByID("pages")
	case key.Matches(msg, m.keys.Menu):
		return m.openMenuByID(rootMenuID)
	case key.Matches(msg, m.keys.NextPage):
		m.cyclePage(1)
	case key.Matches(msg, m.keys.PrevPage):
		m.cyclePage(-1)
	case key.Matches(msg, m.keys.NextPopup):
		m.cycleFocus(1)
	case key.Matches(msg, m.keys.PrevPopup):
		m.cycleFocus(-1)
	case key.Matches(msg, m.keys.ClosePopup):
		return m.closeFocusedPopup()
	case key.Matches(msg, m.keys.Back):
		return m.back(v)
	case key.Matches(msg, m.keys.Refresh):
		return m.forceRefresh()
	case key.Matches(msg, m.keys.Copy):
		return m.copyCell(s)
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m.handleDigit(msg)
	}
	return nil
}

// handleDigit selects page n with the keys 1 to 9.
func (m *Model) handleDigit(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return nil
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return nil
	}
	idx := int(r - '1')
	if idx >= len(m.pages) {
		return nil
	}
	return selectPageCmd(m.pages[idx].category)
}

// back clears the table filter first, then drops popup focus.
func (m *Model) back(v *table.View) tea.Cmd {
	if v.Filter() != "" {
		v.SetFilter("")
		return nil
	}
	if m.focus != "" {
		m.setFocus("")
		return nil
	}
	m.errMsg = ""
	m.infoMsg = ""
	return nil
}

// forceRefresh polls the cluster now, wakes every popup and refills the
// pages from the cache.
func (m *Model) forceRefresh() tea.Cmd {
	if m.backend != nil {
		m.backend.Poke()
	}
	m.popups.ForceRefresh()
	for _, p := range m.pages {
		m.refreshPage(p)
	}
	return m.note("refreshing")
}

func (m *Model) copyCell(s surface) tea.Cmd {
	value, err := s.view.CellValue()
	if err != nil {
		return m.fail(err)
	}
	col, _ := s.view.CurrentColumn()
	return m.copyCmd(col.Title, value)
}
