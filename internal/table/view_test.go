package table

import (
	"strings"
	"sync"
	"testing"

	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/store"
	"github.com/stretchr/testify/require"
)

func jobColumns() display.Descriptors {
	return display.Descriptors{
		{ID: 0, Name: "Name", Type: display.TypeText, Visible: true},
		{ID: 1, Name: "Nodes", Type: display.TypeInt, Visible: true},
		display.Sentinel(),
	}
}

func newJobView(t *testing.T, rows ...[2]any) (*View, *sync.Mutex) {
	t.Helper()
	descs := jobColumns()
	st, err := NewStore(descs)
	require.NoError(t, err)
	for _, values := range rows {
		r := st.Append(nil)
		require.NoError(t, st.SetRow(r, values[0], values[1]))
	}
	lock := &sync.Mutex{}
	return NewView(descs, st, lock), lock
}

func names(v *View) []string {
	var out []string
	for _, line := range v.Lines() {
		out = append(out, v.Store().Text(line.Row, 0))
	}
	return out
}

func TestSortByTogglesDirection(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 10}, [2]any{"b", 2})
	require.Equal(t, []string{"b", "a"}, names(v), "default sort is column 1 ascending")

	require.True(t, v.SortBy(0))
	require.Equal(t, []string{"a", "b"}, names(v))

	require.True(t, v.SortBy(0))
	require.Equal(t, []string{"b", "a"}, names(v))
	col, order := v.Store().SortColumn()
	require.Equal(t, 0, col)
	require.Equal(t, store.Descending, order)
}

func TestFilterNarrowsRows(t *testing.T) {
	v, _ := newJobView(t, [2]any{"gpu-long", 12}, [2]any{"debug", 4}, [2]any{"gpu-short", 2})
	v.SetFilter("gpu")
	require.Equal(t, []string{"gpu-short", "gpu-long"}, names(v))
	v.SetFilter("")
	require.Len(t, v.Lines(), 3)
}

func TestCursorClampsToRows(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 1}, [2]any{"b", 2})
	v.MoveCursor(5)
	require.Equal(t, 1, v.Cursor())
	v.MoveCursor(-9)
	require.Equal(t, 0, v.Cursor())
	require.Equal(t, "a", v.Store().Text(v.Selected(), 0))

	v.MoveColumnCursor(1)
	value, err := v.CellValue()
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestSelectedOnEmptyView(t *testing.T) {
	v, _ := newJobView(t)
	require.Nil(t, v.Selected())
	_, err := v.CellValue()
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestToggleShowsChildren(t *testing.T) {
	v, _ := newJobView(t, [2]any{"debug", 4})
	parent := v.Store().First()
	child := v.Store().Append(parent)
	require.NoError(t, v.Store().SetRow(child, "idle", 3))

	require.Len(t, v.Lines(), 1)
	v.Toggle(parent)
	require.True(t, v.Expanded(parent))
	lines := v.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, 1, lines[1].Depth)
	v.Toggle(parent)
	require.Len(t, v.Lines(), 1)
}

func TestRebuildHonoursVisibility(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 1})
	require.Len(t, v.Columns(), 2)
	v.Descriptors()[1].Visible = false
	v.Rebuild()
	require.Len(t, v.Columns(), 1)
	v.Descriptors()[1].Visible = true
	v.Rebuild()
	require.Len(t, v.Columns(), 2)
}

func TestMoveColumnKeepsOrderAcrossRebuild(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 1})
	v.MoveColumn(1)
	require.Equal(t, 1, v.ColumnCursor())
	cols := v.Columns()
	require.Equal(t, "Nodes", cols[0].Title)
	require.Equal(t, "Name", cols[1].Title)
	v.Rebuild()
	require.Equal(t, "Nodes", v.Columns()[0].Title)
}

func TestRenderMarksSortColumnAndSelection(t *testing.T) {
	v, _ := newJobView(t, [2]any{"debug", 4}, [2]any{"gpu", 12})
	out := v.Render(0, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Nodes"+sortAscending)
	require.Contains(t, lines[1], "debug")
	require.Contains(t, lines[2], "gpu")
}

func TestRenderScrollsToCursor(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 1}, [2]any{"b", 2}, [2]any{"c", 3}, [2]any{"d", 4})
	v.SetCursor(3)
	out := v.Render(0, 3)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "c")
	require.Contains(t, lines[2], "d")
}

func TestClickHeaderSorts(t *testing.T) {
	v, _ := newJobView(t, [2]any{"a", 10}, [2]any{"b", 2})
	v.Render(0, 10)
	click := v.Click(ExpanderWidth, 0, ButtonLeft)
	require.Equal(t, ClickSorted, click.Kind)
	require.Equal(t, 0, click.Column)
	require.Equal(t, []string{"a", "b"}, names(v))
}

func TestClickExpanderTogglesRow(t *testing.T) {
	v, _ := newJobView(t, [2]any{"debug", 4}, [2]any{"gpu", 12})
	parent := v.Store().First()
	child := v.Store().Append(parent)
	require.NoError(t, v.Store().SetRow(child, "idle", 3))
	v.Render(0, 10)

	click := v.Click(0, 1, ButtonLeft)
	require.Equal(t, ClickToggled, click.Kind)
	require.Equal(t, parent, click.Row)
	require.Equal(t, 0, v.Cursor(), "toggling does not move the cursor")
	require.Len(t, v.Lines(), 3)

	click = v.Click(ExpanderWidth+1, 3, ButtonLeft)
	require.Equal(t, ClickSelected, click.Kind)
	require.Equal(t, 2, v.Cursor())

	click = v.Click(ExpanderWidth, 2, ButtonRight)
	require.Equal(t, ClickMenu, click.Kind)
	require.Equal(t, child, click.Row)
	require.Equal(t, 1, v.Cursor())
}

func TestResizeHasMinimum(t *testing.T) {
	v, _ := newJobView(t, [2]any{"debug", 4})
	v.Render(0, 10)
	v.Resize(-50)
	out := v.Render(0, 10)
	require.Contains(t, out, "Na…")
}
