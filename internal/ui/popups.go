package ui

import (
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/popup"
	"github.com/atomicstack/sview/internal/table"
	tea "github.com/charmbracelet/bubbletea"
)

type openPopupMsg struct {
	dest   display.Category
	sel    display.Selection
	option *display.Descriptor
}

type focusPopupMsg struct {
	title string
}

// PopupRefreshedMsg tells the model a popup worker finished a refresh so the
// screen is redrawn.
type PopupRefreshedMsg struct {
	Title string
}

// NotifyPopups returns a popup registry callback forwarding each refresh to
// send, typically tea.Program.Send.
func NotifyPopups(send func(tea.Msg)) func(*popup.Popup) {
	return func(p *popup.Popup) {
		send(PopupRefreshedMsg{Title: p.Title()})
	}
}

// surface is the table that has focus: a popup when one is focused, the
// active page otherwise.
type surface struct {
	title    string
	category display.Category
	view     *table.View
	page     *page
	popup    *popup.Popup
}

func (m *Model) focused() surface {
	if m.focus != "" {
		if p := m.popups.Find(m.focus); p != nil {
			return surface{title: p.Title(), category: p.Category(), view: p.View(), popup: p}
		}
		m.focus = ""
	}
	pg := m.activePage()
	if pg == nil {
		return surface{}
	}
	return surface{title: pg.title(), category: pg.category, view: pg.view, page: pg}
}

// Focus returns the title of the focused popup, or "" for the active page.
func (m *Model) Focus() string {
	if s := m.focused(); s.popup != nil {
		return s.popup.Title()
	}
	return ""
}

func (m *Model) dispatch(dest display.Category, sel display.Selection, option *display.Descriptor) tea.Cmd {
	return func() tea.Msg {
		return openPopupMsg{dest: dest, sel: sel, option: option}
	}
}

func (m *Model) handleOpenPopupMsg(msg tea.Msg) tea.Cmd {
	open, ok := msg.(openPopupMsg)
	if !ok || m.edit != nil {
		return nil
	}
	p, err := m.popups.Open(m.book.Request(open.dest, open.sel, open.option))
	if err != nil {
		return m.fail(err)
	}
	m.setFocus(p.Title())
	return nil
}

func (m *Model) handleFocusPopupMsg(msg tea.Msg) tea.Cmd {
	focus, ok := msg.(focusPopupMsg)
	if !ok {
		return nil
	}
	if m.popups.Find(focus.title) != nil {
		m.setFocus(focus.title)
	}
	return nil
}

// handlePopupRefreshedMsg only drops focus from a popup that has closed;
// receiving the message is enough to redraw.
func (m *Model) handlePopupRefreshedMsg(msg tea.Msg) tea.Cmd {
	refreshed, ok := msg.(PopupRefreshedMsg)
	if ok && refreshed.Title == m.focus && m.popups.Find(refreshed.Title) == nil {
		m.setFocus("")
	}
	return nil
}

func (m *Model) setFocus(title string) {
	if m.focus == title {
		return
	}
	m.focus = title
	events.UI.Focus(title)
}

// cycleFocus moves focus through the active page and the open popups in
// opening order.
func (m *Model) cycleFocus(delta int) {
	titles := []string{""}
	for _, p := range m.popups.Popups() {
		titles = append(titles, p.Title())
	}
	idx := 0
	for i, title := range titles {
		if title == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(titles)) % len(titles)
	m.setFocus(titles[idx])
}

func (m *Model) closeFocusedPopup() tea.Cmd {
	title := m.focus
	if title == "" {
		return nil
	}
	m.setFocus("")
	if !m.popups.Close(title) {
		return nil
	}
	return m.note("closed " + title)
}
