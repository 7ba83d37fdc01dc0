package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/sview/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	tabSeparator = " "
	tabPadding   = 2
	adminMarker  = "[admin]"
	timeLayout   = "15:04:05"
	menuChrome   = 4
)

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{m.tabsLine()}
	if strip := m.popupStrip(); strip != "" {
		lines = append(lines, strip)
	}
	s := m.focused()
	if s.popup != nil {
		lines = append(lines, m.popupTitleBar(s))
	}
	lines = append(lines, m.body(s))
	if input := m.inputLine(); input != "" {
		lines = append(lines, input)
	}
	lines = append(lines, m.statusLine(s))
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func tabLabel(i int, p *page) string {
	return fmt.Sprintf("%d %s", i+1, p.title())
}

func (m *Model) tabsLine() string {
	parts := make([]string, 0, len(m.pages)+1)
	for i, p := range m.pages {
		style := styles.Tab
		if i == m.active && m.focus == "" {
			style = styles.ActiveTab
		}
		parts = append(parts, theme.Render(style, tabLabel(i, p)))
	}
	if m.book.Editable() {
		parts = append(parts, theme.Render(styles.Error, adminMarker))
	}
	return m.clip(strings.Join(parts, tabSeparator))
}

// popupStrip lists the open popups, the focused one highlighted.
func (m *Model) popupStrip() string {
	open := m.popups.Popups()
	if len(open) == 0 {
		return ""
	}
	parts := make([]string, 0, len(open))
	for _, p := range open {
		style := styles.PopupTab
		if p.Title() == m.focus {
			style = styles.PopupActiveTab
		}
		parts = append(parts, theme.Render(style, p.Title()))
	}
	return m.clip(theme.Render(styles.Footer, "popups: ") + strings.Join(parts, " | "))
}

func (m *Model) popupTitleBar(s surface) string {
	status := "loading"
	if err := s.popup.Err(); err != nil {
		status = theme.Render(styles.Error, err.Error())
	} else if last := s.popup.LastRefresh(); !last.IsZero() {
		status = "updated " + last.Format(timeLayout)
	}
	hints := theme.Render(styles.Footer, "[/] switch  x close  esc back")
	return m.clip(theme.Render(styles.PopupTitle, s.title) + " " + status + "  " + hints)
}

func (m *Model) body(s surface) string {
	height := m.bodyHeight()
	if m.mode == ModeMenu {
		return m.menuBox(height)
	}
	if s.view == nil {
		return theme.Render(styles.Info, "(no pages)")
	}
	if s.popup != nil && m.edit == nil {
		m.lock.Lock()
		defer m.lock.Unlock()
	}
	return s.view.Render(m.width, height)
}

func (m *Model) menuBox(height int) string {
	current := m.currentLevel()
	if current == nil {
		return ""
	}
	m.syncViewport(current)
	titles := make([]string, 0, len(m.stack))
	for _, l := range m.stack {
		titles = append(titles, l.Title)
	}
	lines := []string{
		theme.Render(styles.Header, strings.Join(titles, " > ")),
		m.menuFilterLine(),
	}
	rows := m.menuRows()
	start := current.Offset
	end := start + rows
	if end > len(current.Items) {
		end = len(current.Items)
	}
	if len(current.Items) == 0 {
		msg := "(no entries)"
		if f := current.Filter(); f != "" {
			msg = fmt.Sprintf("no matches for %q", f)
		}
		lines = append(lines, theme.Render(styles.Info, msg))
	}
	for i := start; i < end; i++ {
		item := current.Items[i]
		label := item.Label
		if item.Checkable {
			box := "[ ] "
			if item.Checked {
				box = "[x] "
			}
			label = box + label
		}
		style := styles.Item
		if i == current.Cursor {
			style = styles.SelectedItem
		}
		lines = append(lines, theme.Render(style, label))
	}
	box := strings.Join(lines, "\n")
	if styles.MenuBorder != nil {
		box = styles.MenuBorder.Render(box)
	}
	if height > 0 {
		box = lipgloss.NewStyle().MaxHeight(height).Render(box)
	}
	return box
}

func (m *Model) inputLine() string {
	switch m.mode {
	case ModeFilter:
		return m.clip(theme.Render(styles.FilterPrompt, "filter "+m.filterScope+": ") + m.input.View())
	case ModeEdit:
		if m.edit == nil {
			return ""
		}
		col := m.edit.column()
		line := theme.Render(styles.EditPrompt, col.Title+": ") + m.input.View()
		if len(m.edit.choices) > 0 {
			line += "  " + theme.Render(styles.Footer, "tab: "+strings.Join(m.edit.choices, "|"))
		}
		return m.clip(line)
	}
	return ""
}

func (m *Model) statusLine(s surface) string {
	switch {
	case m.errMsg != "":
		return m.clip(theme.Render(styles.Error, "Error: "+m.errMsg))
	case m.infoMsg != "":
		return m.clip(theme.Render(styles.Note, m.infoMsg))
	}
	if warn, msg := m.hasBackendIssue(); warn {
		return m.clip(theme.Render(styles.Error, "slurm: "+msg))
	}
	return m.clip(theme.Render(styles.Info, m.summary(s)))
}

func (m *Model) summary(s surface) string {
	if s.view == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%s: %d rows", s.title, len(s.view.Lines()))}
	if f := s.view.Filter(); f != "" {
		parts = append(parts, fmt.Sprintf("filter %q", f))
	}
	if s.page != nil {
		switch {
		case s.page.err != nil:
			parts = append(parts, "refresh failed: "+s.page.err.Error())
		case !s.page.refreshed.IsZero():
			parts = append(parts, "updated "+s.page.refreshed.Format(timeLayout))
		}
	}
	if n := len(m.deferred); n > 0 {
		parts = append(parts, fmt.Sprintf("held updates: %d", n))
	}
	return strings.Join(parts, ", ")
}

// clip truncates a styled line to the terminal width.
func (m *Model) clip(line string) string {
	if m.width <= 0 || ansi.StringWidth(line) <= m.width {
		return line
	}
	return truncate.StringWithTail(line, uint(m.width), "…")
}

func (m *Model) bodyTop() int {
	top := 1
	if m.popups.Len() > 0 {
		top++
	}
	if m.focused().popup != nil {
		top++
	}
	return top
}

func (m *Model) footerHeight() int {
	h := 1 + lipgloss.Height(m.help.View(m.keys))
	if m.mode == ModeFilter || m.mode == ModeEdit {
		h++
	}
	return h
}

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return defaultBodyHeight
	}
	h := m.height - m.bodyTop() - m.footerHeight()
	if h < 2 {
		h = 2
	}
	return h
}

func (m *Model) tableRows() int {
	return m.bodyHeight() - 1
}

func (m *Model) menuRows() int {
	rows := m.bodyHeight() - menuChrome
	if rows < 1 {
		rows = 1
	}
	return rows
}
