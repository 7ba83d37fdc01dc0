package ui

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/sview/internal/backend"
	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/data/dispatcher"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/pages"
	"github.com/atomicstack/sview/internal/popup"
	"github.com/atomicstack/sview/internal/state"
	"github.com/atomicstack/sview/internal/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	h         *Harness
	demo      *cluster.Static
	cache     *state.Cache
	popups    *popup.Registry
	lock      *sync.Mutex
	clipboard *bytes.Buffer
}

func seed(t *testing.T, cache *state.Cache, src cluster.Source) {
	t.Helper()
	ctx := context.Background()
	parts, err := src.Partitions(ctx)
	require.NoError(t, err)
	cache.SetPartitions(parts)
	jobs, err := src.Jobs(ctx)
	require.NoError(t, err)
	cache.SetJobs(jobs)
	nodes, err := src.Nodes(ctx)
	require.NoError(t, err)
	cache.SetNodes(nodes)
	blocks, err := src.Blocks(ctx)
	require.NoError(t, err)
	cache.SetBlocks(blocks)
}

func newFixture(t *testing.T, admin bool) *fixture {
	t.Helper()
	demo := cluster.Demo()
	cache := state.NewCache()
	seed(t, cache, demo)
	lock := &sync.Mutex{}
	reg := popup.NewRegistry(lock, popup.WithInterval(time.Hour))
	t.Cleanup(reg.Shutdown)
	book := pages.New(cache, demo, pages.Options{Admin: admin, User: "root"})
	clip := &bytes.Buffer{}
	model, err := NewModel(Options{
		Book:       book,
		Popups:     reg,
		Lock:       lock,
		Dispatcher: dispatcher.New(cache),
		Width:      160,
		Height:     40,
		Mouse:      true,
		Clipboard:  clip,
		NoteTTL:    time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(model.Close)
	return &fixture{h: NewHarness(model), demo: demo, cache: cache, popups: reg, lock: lock, clipboard: clip}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *fixture) model() *Model {
	return f.h.Model()
}

// selectRow puts the cursor of the focused table on the row whose key column
// holds id.
func (f *fixture) selectRow(t *testing.T, col int, id string) {
	t.Helper()
	v := f.model().focused().view
	row := v.Store().Find(nil, col, id)
	require.NotNil(t, row, "row %s", id)
	idx, err := v.RowIndex(row)
	require.NoError(t, err)
	v.SetCursor(idx)
}

// selectColumn puts the column cursor of the focused table on column id.
func (f *fixture) selectColumn(t *testing.T, id int) {
	t.Helper()
	v := f.model().focused().view
	for i, c := range v.Columns() {
		if c.ID == id {
			v.MoveColumnCursor(i - v.ColumnCursor())
			return
		}
	}
	t.Fatalf("column %d not shown", id)
}

func TestNewModelRequiresCollaborators(t *testing.T) {
	_, err := NewModel(Options{})
	require.Error(t, err)
}

func TestPagesFillFromCache(t *testing.T) {
	f := newFixture(t, false)
	m := f.model()
	require.Equal(t, display.Job, m.ActivePage())
	require.Equal(t, 5, m.pageFor(display.Job).store.Len())
	require.Equal(t, 3, m.pageFor(display.Partition).store.Len())
	require.Equal(t, 14, m.pageFor(display.Node).store.Len())
	require.Nil(t, m.pageFor(display.Block))

	view := f.h.View()
	require.Contains(t, view, "1 Jobs")
	require.Contains(t, view, "3 Nodes")
	require.Contains(t, view, "train-resnet")
	require.NotContains(t, view, adminMarker)
}

func TestAdminMarkerShown(t *testing.T) {
	f := newFixture(t, true)
	require.Contains(t, f.h.View(), adminMarker)
}

func TestPageSwitching(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("3"))
	require.Equal(t, display.Node, f.model().ActivePage())
	f.h.Send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, display.Job, f.model().ActivePage())
	f.h.Send(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, display.Node, f.model().ActivePage())
	f.h.Send(runes("9"))
	require.Equal(t, display.Node, f.model().ActivePage())
}

func TestPagesMenuSelectsPage(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("p"))
	require.Equal(t, ModeMenu, f.model().Mode())
	require.Contains(t, f.h.View(), "Partitions")

	for _, r := range "part" {
		f.h.Send(runes(string(r)))
	}
	current := f.model().currentLevel()
	require.Equal(t, "part", current.Filter())
	require.Len(t, current.Items, 1)

	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeTable, f.model().Mode())
	require.Equal(t, display.Partition, f.model().ActivePage())
}

func TestRootMenuOpensSubmenu(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("m"))
	require.Equal(t, rootMenuID, f.model().currentLevel().ID)
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, f.model().stack, 2)
	require.Equal(t, "pages", f.model().currentLevel().ID)
	require.Contains(t, f.h.View(), "Menu > Pages")

	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, f.model().stack, 1)
	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ModeTable, f.model().Mode())
}

func TestBackendEventRefreshesPage(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindJobs,
		Data: []cluster.Job{{ID: "2000", Name: "fresh", User: "dave", State: "PENDING", Partition: "debug"}},
	}})
	st := f.model().pageFor(display.Job).store
	require.Equal(t, 1, st.Len())
	require.NotNil(t, st.Find(nil, pages.JobID, "2000"))
	require.Nil(t, st.Find(nil, pages.JobID, "1001"))
}

func TestBackendErrorKeepsRows(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindNodes, Err: context.DeadlineExceeded}})
	require.Equal(t, 14, f.model().pageFor(display.Node).store.Len())
	require.Contains(t, f.h.View(), "slurm: nodes: context deadline exceeded")

	nodes, err := f.demo.Nodes(context.Background())
	require.NoError(t, err)
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindNodes, Data: nodes}})
	require.NotContains(t, f.h.View(), "slurm:")
}

func TestEditCommitsThroughAdmin(t *testing.T) {
	f := newFixture(t, true)
	f.selectRow(t, pages.JobID, "1003")
	f.selectColumn(t, pages.JobTimeLimit)

	f.h.Send(runes("e"))
	require.Equal(t, ModeEdit, f.model().Mode())
	require.True(t, f.model().Editing())
	require.Equal(t, "1:00:00", f.model().input.Value())
	require.False(t, f.lock.TryLock(), "an open edit holds the shared lock")

	f.model().input.SetValue("90")
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeTable, f.model().Mode())
	require.False(t, f.model().Editing())
	require.Equal(t, "TimeLimit set to 1:30:00", f.model().infoMsg)

	updates := f.demo.Updates()
	require.Len(t, updates, 1)
	require.Equal(t, []string{"update", "JobId=1003", "TimeLimit=1:30:00"}, updates[0].Args())

	st := f.model().pageFor(display.Job).store
	require.Equal(t, "1:30:00", st.Text(st.Find(nil, pages.JobID, "1003"), pages.JobTimeLimit))

	require.True(t, f.lock.TryLock())
	f.lock.Unlock()

	f.h.Expire()
	require.Empty(t, f.model().infoMsg)
}

func TestEditCancelReleasesLock(t *testing.T) {
	f := newFixture(t, true)
	f.selectRow(t, pages.JobID, "1001")
	f.selectColumn(t, pages.JobTimeLimit)
	f.h.Send(runes("e"))
	require.True(t, f.model().Editing())
	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, f.model().Editing())
	require.Empty(t, f.demo.Updates())
	require.True(t, f.lock.TryLock())
	f.lock.Unlock()
}

func TestEditFailureShowsError(t *testing.T) {
	f := newFixture(t, true)
	f.selectRow(t, pages.JobID, "1003")
	f.selectColumn(t, pages.JobTimeLimit)
	f.h.Send(runes("e"))
	f.model().input.SetValue("soon")
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Contains(t, f.model().errMsg, "TimeLimit")
	require.Empty(t, f.demo.Updates())
	st := f.model().pageFor(display.Job).store
	require.Equal(t, "1:00:00", st.Text(st.Find(nil, pages.JobID, "1003"), pages.JobTimeLimit))
}

func TestReadOnlyColumnRefusesEdit(t *testing.T) {
	f := newFixture(t, false)
	f.selectColumn(t, pages.JobTimeLimit)
	f.h.Send(runes("e"))
	require.Equal(t, ModeTable, f.model().Mode())
	require.Contains(t, f.model().errMsg, table.ErrNotEditable.Error())
}

func TestComboEditCyclesChoices(t *testing.T) {
	f := newFixture(t, true)
	f.h.Send(runes("3"))
	f.selectRow(t, pages.NodeName, "node07")
	f.selectColumn(t, pages.NodeState)
	f.h.Send(runes("e"))
	require.Equal(t, "alloc", f.model().input.Value())

	f.h.Send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "DRAIN", f.model().input.Value())
	require.Contains(t, f.h.View(), "tab: DRAIN|RESUME")

	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	updates := f.demo.Updates()
	require.Len(t, updates, 1)
	require.Equal(t, "node07", updates[0].ID)
	require.Equal(t, "DRAIN", updates[0].Value)
}

func TestEventsDeferredDuringEdit(t *testing.T) {
	f := newFixture(t, true)
	f.selectRow(t, pages.JobID, "1003")
	f.selectColumn(t, pages.JobTimeLimit)
	f.h.Send(runes("e"))
	require.True(t, f.model().Editing())

	jobs := []cluster.Job{{ID: "3000", Name: "late", State: "PENDING", Partition: "gpu"}}
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindJobs, Data: jobs}})
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindJobs, Data: jobs}})
	require.Equal(t, 1, f.model().Deferred())
	require.Equal(t, 5, f.model().pageFor(display.Job).store.Len())
	require.Contains(t, f.h.View(), "held updates: 1")

	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Zero(t, f.model().Deferred())
	st := f.model().pageFor(display.Job).store
	require.Equal(t, 1, st.Len())
	require.NotNil(t, st.Find(nil, pages.JobID, "3000"))
}

func TestContextMenuOpensPopup(t *testing.T) {
	f := newFixture(t, false)
	f.selectRow(t, pages.JobID, "1003")
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeMenu, f.model().Mode())
	require.Equal(t, []string{"Info", "Partitions", "Nodes"}, labels(f.model().currentLevel()))

	f.h.Send(tea.KeyMsg{Type: tea.KeyEnd})
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeTable, f.model().Mode())
	require.Equal(t, 1, f.popups.Len())
	title := f.popups.Popups()[0].Title()
	require.Equal(t, title, f.model().Focus())

	p := f.popups.Find(title)
	require.Eventually(t, func() bool { return p.Refreshes() >= 1 }, 2*time.Second, 5*time.Millisecond)
	f.h.Send(PopupRefreshedMsg{Title: title})
	view := f.h.View()
	require.Contains(t, view, title)
	require.Contains(t, view, "node03")

	f.h.Send(runes("x"))
	require.Zero(t, f.popups.Len())
	require.Empty(t, f.model().Focus())
	require.Equal(t, "closed "+title, f.model().infoMsg)
}

func TestInfoOpensOwnPopup(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("2"))
	f.selectRow(t, pages.PartName, "gpu")
	f.h.Send(runes("i"))
	require.NotNil(t, f.popups.Find("Partition gpu"))
	require.Equal(t, "Partition gpu", f.model().Focus())

	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, f.model().Focus())
	f.h.Send(runes("]"))
	require.Equal(t, "Partition gpu", f.model().Focus())
	f.h.Send(runes("]"))
	require.Empty(t, f.model().Focus())
}

func TestFieldsMenuTogglesColumn(t *testing.T) {
	f := newFixture(t, false)
	view := f.model().pageFor(display.Job).view
	shown := len(view.Columns())

	f.h.Send(runes("f"))
	require.Equal(t, "fields", f.model().currentLevel().ID)
	require.NoError(t, selectItem(f.model(), "2"))
	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, ModeMenu, f.model().Mode(), "toggling keeps the menu open")
	require.Len(t, view.Columns(), shown-1)
	item, ok := f.model().currentLevel().Current()
	require.True(t, ok)
	require.Equal(t, "2", item.ID)
	require.False(t, item.Checked)
	require.Contains(t, f.h.View(), "[ ] Name")
}

func labels(l *level) []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.Label)
	}
	return out
}

func selectItem(m *Model, id string) error {
	l := m.currentLevel()
	idx := l.IndexOf(id)
	if idx < 0 {
		return table.ErrNoSelection
	}
	l.Cursor = idx
	return nil
}

func TestTableFilter(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("/"))
	require.Equal(t, ModeFilter, f.model().Mode())
	for _, r := range "resnet" {
		f.h.Send(runes(string(r)))
	}
	view := f.model().pageFor(display.Job).view
	require.Equal(t, "resnet", view.Filter())
	require.Len(t, view.Lines(), 1)

	f.h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeTable, f.model().Mode())
	require.Equal(t, "resnet", view.Filter())

	f.h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, view.Filter())
}

func TestCopyWritesOSC52(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")
	f := newFixture(t, false)
	f.selectRow(t, pages.JobID, "1002")
	f.selectColumn(t, pages.JobName)
	f.h.Send(runes("y"))
	require.True(t, strings.HasPrefix(f.clipboard.String(), "\x1b]52;c;"))
	require.Equal(t, `copied Name "mpi-cfd"`, f.model().infoMsg)
}

func TestMouseHeaderSorts(t *testing.T) {
	f := newFixture(t, false)
	m := f.model()
	view := m.pageFor(display.Job).view
	f.h.View()
	f.h.Send(tea.MouseMsg{X: table.ExpanderWidth, Y: m.bodyTop(), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	col, _ := view.Store().SortColumn()
	require.Equal(t, pages.JobID, col)
}

func TestMouseTabSelectsPage(t *testing.T) {
	f := newFixture(t, false)
	m := f.model()
	x := runewidth.StringWidth(tabLabel(0, m.pages[0])) + tabPadding + len(tabSeparator) + 1
	f.h.Send(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	require.Equal(t, display.Partition, m.ActivePage())
}

func TestQuit(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("q"))
	require.True(t, f.h.Quit())
}

func TestForceRefreshNotes(t *testing.T) {
	f := newFixture(t, false)
	f.h.Send(runes("r"))
	require.Equal(t, "refreshing", f.model().infoMsg)
	f.h.Expire()
	require.Empty(t, f.model().infoMsg)
}
