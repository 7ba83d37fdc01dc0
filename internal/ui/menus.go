package ui

import (
	"errors"
	"fmt"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/menu"
	"github.com/atomicstack/sview/internal/pages"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/table"
	"github.com/atomicstack/sview/internal/ui/command"
	uistate "github.com/atomicstack/sview/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

const rootMenuID = "root"

var errNoOptions = errors.New("no options for this row")

type openMenuMsg struct {
	id string
}

type selectPageMsg struct {
	category display.Category
}

func (m *Model) registerMenus() {
	m.menus.Register("pages", "Pages", func() (menu.Menu, error) {
		return menu.BuildPageMenu(m.pageDescs, selectPageCmd), nil
	})
	m.menus.Register("fields", "Fields", m.fieldsMenu)
	m.menus.Register("popups", "Popups", m.popupsMenu)
}

func selectPageCmd(c display.Category) tea.Cmd {
	return func() tea.Msg { return selectPageMsg{category: c} }
}

func openMenuAction(id string) menu.Action {
	return func(menu.Item) tea.Cmd {
		return func() tea.Msg { return openMenuMsg{id: id} }
	}
}

// fieldsMenu toggles the columns of the focused table.
func (m *Model) fieldsMenu() (menu.Menu, error) {
	s := m.focused()
	if s.popup != nil {
		return s.popup.FieldsMenu(), nil
	}
	if s.page == nil {
		return menu.Menu{}, table.ErrNoSelection
	}
	pg := s.page
	return menu.BuildVisibilityMenu("fields", pg.title()+" fields", pg.descs, func(*display.Descriptor) tea.Cmd {
		pg.view.Rebuild()
		return nil
	}), nil
}

func (m *Model) popupsMenu() (menu.Menu, error) {
	mm := menu.Menu{ID: "popups", Title: "Popups"}
	for _, p := range m.popups.Popups() {
		title := p.Title()
		mm.Items = append(mm.Items, menu.Item{
			ID:    title,
			Label: title,
			Action: func(menu.Item) tea.Cmd {
				return func() tea.Msg { return focusPopupMsg{title: title} }
			},
		})
	}
	return mm, nil
}

func (m *Model) handleOpenMenuMsg(msg tea.Msg) tea.Cmd {
	open, ok := msg.(openMenuMsg)
	if !ok {
		return nil
	}
	return m.openMenuByID(open.id)
}

func (m *Model) handleSelectPageMsg(msg tea.Msg) tea.Cmd {
	sel, ok := msg.(selectPageMsg)
	if !ok {
		return nil
	}
	if m.selectPage(sel.category) {
		events.UI.PageSwitch(pages.Name(sel.category))
	}
	return nil
}

// openMenuByID opens a registered menu, or the root menu listing them.
func (m *Model) openMenuByID(id string) tea.Cmd {
	if id == rootMenuID {
		root := func() (menu.Menu, error) { return m.menus.Root(openMenuAction), nil }
		mm, _ := root()
		m.pushMenu(mm, root)
		return nil
	}
	mm, err := m.menus.Load(id)
	if err != nil {
		return m.fail(err)
	}
	m.pushMenu(mm, func() (menu.Menu, error) { return m.menus.Load(id) })
	return nil
}

// pushMenu opens mm on top of any open menu. reload rebuilds it after a
// checkable item changes state.
func (m *Model) pushMenu(mm menu.Menu, reload menu.Loader) {
	lvl := uistate.NewLevel(mm)
	lvl.Data = reload
	m.stack = append(m.stack, lvl)
	m.mode = ModeMenu
	m.syncViewport(lvl)
}

func (m *Model) currentLevel() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Model) popMenu() {
	if len(m.stack) == 0 {
		m.mode = ModeTable
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	if len(m.stack) == 0 {
		m.mode = ModeTable
	}
	m.errMsg = ""
}

func (m *Model) closeMenus() {
	m.stack = nil
	m.mode = ModeTable
}

// openContextMenu lists the drill-down options of row on the focused table.
func (m *Model) openContextMenu(row *store.Row) tea.Cmd {
	mm, err := m.contextMenu(row)
	if err != nil {
		return m.fail(err)
	}
	m.pushMenu(mm, nil)
	return nil
}

// openInfo opens the row's own detail popup without showing the menu.
func (m *Model) openInfo(row *store.Row) tea.Cmd {
	mm, err := m.contextMenu(row)
	if err != nil {
		return m.fail(err)
	}
	item := mm.Items[0]
	return m.bus.Execute(command.Request{ID: mm.ID + ":" + item.ID, Label: item.Label, Handler: item.Action, Item: item})
}

func (m *Model) contextMenu(row *store.Row) (menu.Menu, error) {
	s := m.focused()
	if s.view == nil || row == nil {
		return menu.Menu{}, table.ErrNoSelection
	}
	desc := m.pageDesc(s.category)
	if desc == nil || desc.Caps.Menu == nil {
		return menu.Menu{}, fmt.Errorf("%w: %s", errNoOptions, s.category)
	}
	sel := pages.Selection(s.category, s.view.Store(), row)
	mm := menu.BuildContextMenu(desc.Caps.Menu(sel), sel, m.dispatch)
	if len(mm.Items) == 0 {
		return menu.Menu{}, fmt.Errorf("%w: %s", errNoOptions, s.category)
	}
	return mm, nil
}

func (m *Model) pageDesc(c display.Category) *display.Descriptor {
	var found *display.Descriptor
	m.pageDescs.Each(func(d *display.Descriptor) bool {
		if d.Dest == c {
			found = d
			return false
		}
		return true
	})
	return found
}

// activateMenuItem runs the item under the cursor. Checkable items keep the
// menu open and redraw it; root entries push their submenu; anything else
// closes the menus.
func (m *Model) activateMenuItem() tea.Cmd {
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	item, ok := current.Current()
	if !ok {
		return nil
	}
	events.UI.MenuEnter(current.ID, item.ID, item.Label, current.Filter())
	cmd := m.bus.Execute(command.Request{
		ID:      current.ID + ":" + item.ID,
		Label:   item.Label,
		Handler: item.Action,
		Item:    item,
	})
	switch {
	case item.Checkable:
		if reload, ok := current.Data.(menu.Loader); ok && reload != nil {
			if mm, err := reload(); err == nil {
				current.Replace(mm)
				m.syncViewport(current)
			}
		}
	case current.ID == rootMenuID:
	default:
		m.closeMenus()
	}
	return cmd
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.Scroll(m.menuRows())
}
