package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the table-mode bindings. Menu, filter and edit modes read
// raw keys instead.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Left       key.Binding
	Right      key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	Wider      key.Binding
	Narrower   key.Binding
	Sort       key.Binding
	Expand     key.Binding
	Options    key.Binding
	Info       key.Binding
	Edit       key.Binding
	Filter     key.Binding
	Fields     key.Binding
	Pages      key.Binding
	Menu       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	NextPopup  key.Binding
	PrevPopup  key.Binding
	ClosePopup key.Binding
	Back       key.Binding
	Refresh    key.Binding
	Copy       key.Binding
	ToggleHelp key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "page down")),
		Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
		End:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column right")),
		MoveLeft:   key.NewBinding(key.WithKeys("<", "shift+left"), key.WithHelp("<", "move column left")),
		MoveRight:  key.NewBinding(key.WithKeys(">", "shift+right"), key.WithHelp(">", "move column right")),
		Wider:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "widen column")),
		Narrower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrow column")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Expand:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "expand")),
		Options:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "row options")),
		Info:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit cell")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Fields:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fields")),
		Pages:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pages")),
		Menu:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		NextPage:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "previous page")),
		NextPopup:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next popup")),
		PrevPopup:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous popup")),
		ClosePopup: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close popup")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
		ToggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is part of help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Options, k.Edit, k.Filter, k.Fields, k.Pages, k.NextPopup, k.Refresh, k.ToggleHelp, k.Quit}
}

// FullHelp is part of help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Left, k.Right, k.MoveLeft, k.MoveRight, k.Wider, k.Narrower, k.Sort},
		{k.Expand, k.Options, k.Info, k.Edit, k.Filter, k.Copy},
		{k.Fields, k.Pages, k.Menu, k.NextPage, k.PrevPage},
		{k.NextPopup, k.PrevPopup, k.ClosePopup, k.Back, k.Refresh, k.ToggleHelp, k.Quit},
	}
}
