// Package menu builds the menus attached to tables and popups: column
// visibility toggles, drill-down context menus and the page selector.
package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	ErrUnknownCategory = errors.New("unknown destination category")
	ErrUnknownItem     = errors.New("unknown menu item")
)

// Item represents a selectable menu entry.
type Item struct {
	ID        string
	Label     string
	Checkable bool
	Checked   bool
	Action    Action
}

// Action runs when an item is activated.
type Action func(Item) tea.Cmd

// Menu is a titled list of items.
type Menu struct {
	ID    string
	Title string
	Items []Item
}

// ActionResult communicates the outcome of executing a menu action.
type ActionResult struct {
	Info string
	Err  error
}

// Dispatch opens or focuses the popup for dest showing the selected row.
type Dispatch func(dest display.Category, sel display.Selection, option *display.Descriptor) tea.Cmd

// Find returns the item with the given id.
func (m Menu) Find(id string) (Item, bool) {
	for _, item := range m.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Activate runs the action of item id.
func (m Menu) Activate(id string) (tea.Cmd, error) {
	item, ok := m.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if item.Action == nil {
		return nil, nil
	}
	return item.Action(item), nil
}

// Labels returns the item labels in order.
func (m Menu) Labels() []string {
	out := make([]string, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Label
	}
	return out
}

// BuildVisibilityMenu returns one checkable item per named descriptor, checked
// when the column is visible. Activating an item flips Visible in descs and
// calls onToggle so the caller can rebuild its table.
func BuildVisibilityMenu(id, title string, descs display.Descriptors, onToggle func(*display.Descriptor) tea.Cmd) Menu {
	m := Menu{ID: id, Title: title}
	descs.Each(func(d *display.Descriptor) bool {
		if d.Name == "" {
			return true
		}
		m.Items = append(m.Items, Item{
			ID:        strconv.Itoa(d.ID),
			Label:     d.Name,
			Checkable: true,
			Checked:   d.Visible,
			Action: func(Item) tea.Cmd {
				d.Visible = !d.Visible
				events.Menu.Toggle(d.Name, d.Visible)
				if onToggle == nil {
					return nil
				}
				return onToggle(d)
			},
		})
		return true
	})
	return m
}

// BuildContextMenu returns one item per named option descriptor. Activating
// an item dispatches to the option's destination for the selected row. An
// option with an unknown destination reports an error instead.
func BuildContextMenu(descs display.Descriptors, sel display.Selection, dispatch Dispatch) Menu {
	m := Menu{ID: "context", Title: contextTitle(sel)}
	descs.Each(func(d *display.Descriptor) bool {
		if d.Name == "" {
			return true
		}
		m.Items = append(m.Items, Item{
			ID:    strconv.Itoa(d.ID),
			Label: d.Name,
			Action: func(Item) tea.Cmd {
				if !d.Dest.Known() {
					events.Menu.UnknownDestination(int(d.Dest), d.Name)
					return Result(ActionResult{Err: fmt.Errorf("%w: %s", ErrUnknownCategory, d.Dest)})
				}
				events.Menu.Dispatch(d.Dest.String(), sel.Identity, d.Name)
				if dispatch == nil {
					return nil
				}
				return dispatch(d.Dest, sel, d)
			},
		})
		return true
	})
	return m
}

func contextTitle(sel display.Selection) string {
	if sel.Identity == "" {
		return sel.Category.String()
	}
	return sel.Category.String() + " " + sel.Identity
}

// BuildPageMenu returns the page selector. Activating an item calls open with
// the page's category.
func BuildPageMenu(pages display.Descriptors, open func(display.Category) tea.Cmd) Menu {
	m := Menu{ID: "pages", Title: "Pages"}
	pages.Each(func(d *display.Descriptor) bool {
		if d.Name == "" || !d.Visible {
			return true
		}
		dest := d.Dest
		m.Items = append(m.Items, Item{
			ID:    strings.ToLower(d.Name),
			Label: prettyLabel(d.Name),
			Action: func(Item) tea.Cmd {
				if open == nil {
					return nil
				}
				return open(dest)
			},
		})
		return true
	})
	return m
}

// Result wraps res in a command.
func Result(res ActionResult) tea.Cmd {
	return func() tea.Msg { return res }
}

func prettyLabel(id string) string {
	if id == "" {
		return id
	}
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
