package ui

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/backend"
	"github.com/atomicstack/sview/internal/data/dispatcher"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/menu"
	"github.com/atomicstack/sview/internal/pages"
	"github.com/atomicstack/sview/internal/popup"
	"github.com/atomicstack/sview/internal/table"
	"github.com/atomicstack/sview/internal/theme"
	"github.com/atomicstack/sview/internal/ui/command"
	uistate "github.com/atomicstack/sview/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

// Mode selects who receives key presses.
type Mode int

const (
	ModeTable Mode = iota
	ModeMenu
	ModeFilter
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModeFilter:
		return "filter"
	case ModeEdit:
		return "edit"
	default:
		return "table"
	}
}

const (
	defaultNoteTTL    = 5 * time.Second
	defaultBodyHeight = 20
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options wires the model to its collaborators. Book, Lock and Popups are
// required; the watcher and dispatcher may be nil in tests, which then feed
// backend events directly.
type Options struct {
	Book       *pages.Book
	Popups     *popup.Registry
	Lock       sync.Locker
	Watcher    *backend.Watcher
	Dispatcher *dispatcher.Dispatcher
	// Page is the page shown first; None means the first tab.
	Page   display.Category
	Width  int
	Height int
	Mouse  bool
	// Clipboard receives OSC 52 copy sequences. Defaults to stdout.
	Clipboard io.Writer
	// NoteTTL is how long status notes stay up.
	NoteTTL time.Duration
}

// Model implements the Bubble Tea model for sview.
type Model struct {
	book       *pages.Book
	popups     *popup.Registry
	lock       sync.Locker
	backend    *backend.Watcher
	dispatcher *dispatcher.Dispatcher
	menus      *menu.Registry
	bus        *command.Bus
	keys       KeyMap
	help       help.Model

	pageDescs display.Descriptors
	pages     []*page
	active    int
	focus     string

	mode  Mode
	stack []*level
	input textinput.Model
	edit  *editState

	filterView  *table.View
	filterScope string

	deferred       []backend.Event
	backendState   map[backend.Kind]error
	backendLastErr string

	errMsg      string
	infoMsg     string
	noteSeq     int
	noteTTL     time.Duration
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	mouse       bool
	clipboard   io.Writer

	handlers map[reflect.Type]msgHandler
}

// NewModel builds one table per enabled page and the menu registry.
func NewModel(opts Options) (*Model, error) {
	if opts.Book == nil || opts.Lock == nil || opts.Popups == nil {
		return nil, fmt.Errorf("ui: book, lock and popup registry are required")
	}
	m := &Model{
		book:         opts.Book,
		popups:       opts.Popups,
		lock:         opts.Lock,
		backend:      opts.Watcher,
		dispatcher:   opts.Dispatcher,
		menus:        menu.NewRegistry(),
		bus:          command.New(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		pageDescs:    opts.Book.Pages(),
		backendState: map[backend.Kind]error{},
		noteTTL:      opts.NoteTTL,
		mouse:        opts.Mouse,
		clipboard:    opts.Clipboard,
	}
	if m.noteTTL <= 0 {
		m.noteTTL = defaultNoteTTL
	}
	if m.clipboard == nil {
		m.clipboard = os.Stdout
	}
	for _, c := range opts.Book.Categories() {
		p, err := newPage(opts.Book, c, opts.Lock)
		if err != nil {
			return nil, fmt.Errorf("%s page: %w", pages.Name(c), err)
		}
		if c == opts.Page {
			m.active = len(m.pages)
		}
		m.pages = append(m.pages, p)
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.input = textinput.New()
	m.input.Prompt = ""
	m.input.Cursor.SetMode(cursor.CursorStatic)
	if styles.Filter != nil {
		m.input.TextStyle = *styles.Filter
	}
	m.registerMenus()
	m.registerHandlers()
	for _, p := range m.pages {
		m.refreshPage(p)
	}
	return m, nil
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(menu.ActionResult{}): m.handleActionResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(openMenuMsg{}):       m.handleOpenMenuMsg,
		reflect.TypeOf(selectPageMsg{}):     m.handleSelectPageMsg,
		reflect.TypeOf(openPopupMsg{}):      m.handleOpenPopupMsg,
		reflect.TypeOf(focusPopupMsg{}):     m.handleFocusPopupMsg,
		reflect.TypeOf(PopupRefreshedMsg{}): m.handlePopupRefreshedMsg,
		reflect.TypeOf(noteExpiredMsg{}):    m.handleNoteExpiredMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	m.help.Width = m.width
	return nil
}

// Mode returns who currently receives key presses.
func (m *Model) Mode() Mode {
	return m.mode
}

// Editing reports whether an edit session holds the shared lock.
func (m *Model) Editing() bool {
	return m.edit != nil
}

// Close ends an open edit session so the shared lock is free for shutdown.
func (m *Model) Close() {
	m.cancelEdit()
}
