package ui

import (
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const wheelStep = 3

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok || !m.mouse || m.mode != ModeTable {
		return nil
	}
	s := m.focused()
	switch mouse.Button {
	case tea.MouseButtonWheelUp:
		if s.view != nil {
			s.view.MoveCursor(-wheelStep)
		}
		return nil
	case tea.MouseButtonWheelDown:
		if s.view != nil {
			s.view.MoveCursor(wheelStep)
		}
		return nil
	}
	if mouse.Action != tea.MouseActionPress {
		return nil
	}
	if mouse.Y == 0 {
		if c, ok := m.tabAt(mouse.X); ok {
			return selectPageCmd(c)
		}
		return nil
	}
	if s.view == nil {
		return nil
	}
	y := mouse.Y - m.bodyTop()
	if y < 0 || y >= m.bodyHeight() {
		return nil
	}
	button := table.ButtonLeft
	switch mouse.Button {
	case tea.MouseButtonLeft:
	case tea.MouseButtonRight:
		button = table.ButtonRight
	default:
		return nil
	}
	click := s.view.Click(mouse.X, y, button)
	if click.Kind == table.ClickMenu {
		return m.openContextMenu(click.Row)
	}
	return nil
}

// tabAt maps a column on the tab line to the page drawn there.
func (m *Model) tabAt(x int) (display.Category, bool) {
	pos := 0
	for i, p := range m.pages {
		w := runewidth.StringWidth(tabLabel(i, p)) + tabPadding
		if x >= pos && x < pos+w {
			return p.category, true
		}
		pos += w + len(tabSeparator)
	}
	return display.None, false
}
