package table

import (
	"strconv"
	"strings"
	"sync"

	"github.com/atomicstack/sview/internal/display"
	fmttable "github.com/atomicstack/sview/internal/format/table"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/theme"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ExpanderWidth is the left margin that toggles expand/collapse on click.
const ExpanderWidth = 2

const minColumnWidth = 3

const (
	markerCollapsed = "▸ "
	markerExpanded  = "▾ "
	markerLeaf      = "  "
	sortAscending   = " ▲"
	sortDescending  = " ▼"
)

// Button is the mouse button of a click.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// ClickKind reports what a click did.
type ClickKind int

const (
	ClickNone ClickKind = iota
	ClickToggled
	ClickSelected
	ClickMenu
	ClickSorted
)

// Click is the outcome of View.Click.
type Click struct {
	Kind   ClickKind
	Row    *store.Row
	Column int
}

// View is an interactive table over a row store. A View belongs to the UI
// goroutine; only its store is shared with refresh workers.
type View struct {
	lock     sync.Locker
	descs    display.Descriptors
	store    *store.TreeStore
	columns  []Column
	order    []int
	widths   map[int]int
	expanded map[*store.Row]bool

	cursor    int
	colCursor int
	offset    int
	filter    string

	lines    []store.Line
	rendered []int
	session  *Session
}

// NewView builds a view over st. descs is shared with the caller so the
// visibility menu can update it in place before a Rebuild.
func NewView(descs display.Descriptors, st *store.TreeStore, lock sync.Locker) *View {
	v := &View{
		lock:     lock,
		descs:    descs,
		store:    st,
		widths:   make(map[int]int),
		expanded: make(map[*store.Row]bool),
	}
	v.Rebuild()
	return v
}

// Rebuild recreates the column set from the descriptors. Columns keep the
// order the user gave them; newly visible columns are appended.
func (v *View) Rebuild() {
	built := BuildColumns(v.descs)
	byID := make(map[int]Column, len(built))
	for _, c := range built {
		byID[c.ID] = c
	}
	cols := make([]Column, 0, len(built))
	seen := make(map[int]bool, len(built))
	for _, id := range v.order {
		if c, ok := byID[id]; ok && !seen[id] {
			cols = append(cols, c)
			seen[id] = true
		}
	}
	for _, c := range built {
		if !seen[c.ID] {
			cols = append(cols, c)
			v.order = append(v.order, c.ID)
		}
	}
	v.columns = cols
	v.clampColumn()
	events.Table.Rebuild(len(cols))
}

// Columns returns the columns in display order.
func (v *View) Columns() []Column {
	return append([]Column(nil), v.columns...)
}

// Descriptors returns the descriptor table driving the view.
func (v *View) Descriptors() display.Descriptors {
	return v.descs
}

// Store returns the backing row store.
func (v *View) Store() *store.TreeStore {
	return v.store
}

// Lines returns the rows currently shown, after expansion and filtering.
func (v *View) Lines() []store.Line {
	all := v.store.Lines(func(r *store.Row) bool { return v.expanded[r] })
	query := strings.TrimSpace(v.filter)
	if query == "" {
		v.lines = all
	} else {
		filtered := make([]store.Line, 0, len(all))
		for _, line := range all {
			if fuzzy.MatchNormalizedFold(query, v.rowText(line)) {
				filtered = append(filtered, line)
			}
		}
		v.lines = filtered
	}
	v.clampCursor()
	return v.lines
}

func (v *View) rowText(line store.Line) string {
	parts := make([]string, 0, len(v.columns))
	for _, c := range v.columns {
		parts = append(parts, cellText(line.Values, c.ID))
	}
	return strings.Join(parts, " ")
}

func cellText(values []any, id int) string {
	if id < 0 || id >= len(values) {
		return ""
	}
	switch val := values[id].(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// SetFilter narrows the rows to those fuzzily matching query.
func (v *View) SetFilter(query string) {
	v.filter = query
	v.cursor = 0
	v.offset = 0
	v.Lines()
}

// Filter returns the current row filter.
func (v *View) Filter() string {
	return v.filter
}

// Cursor returns the index of the selected line.
func (v *View) Cursor() int {
	return v.cursor
}

// MoveCursor moves the row selection by delta, clamped to the shown rows.
func (v *View) MoveCursor(delta int) {
	v.cursor += delta
	v.Lines()
}

// SetCursor selects the line at idx.
func (v *View) SetCursor(idx int) {
	v.cursor = idx
	v.Lines()
}

func (v *View) clampCursor() {
	if v.cursor >= len(v.lines) {
		v.cursor = len(v.lines) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// Selected returns the row under the cursor, or nil.
func (v *View) Selected() *store.Row {
	lines := v.Lines()
	if v.cursor < 0 || v.cursor >= len(lines) {
		return nil
	}
	return lines[v.cursor].Row
}

// RowIndex returns the position of r among the shown rows.
func (v *View) RowIndex(r *store.Row) (int, error) {
	for i, line := range v.Lines() {
		if line.Row == r {
			return i, nil
		}
	}
	return -1, ErrNoSelection
}

// ColumnCursor returns the index of the selected column in display order.
func (v *View) ColumnCursor() int {
	return v.colCursor
}

// MoveColumnCursor moves the column selection by delta.
func (v *View) MoveColumnCursor(delta int) {
	v.colCursor += delta
	v.clampColumn()
}

func (v *View) clampColumn() {
	if v.colCursor >= len(v.columns) {
		v.colCursor = len(v.columns) - 1
	}
	if v.colCursor < 0 {
		v.colCursor = 0
	}
}

// CurrentColumn returns the selected column.
func (v *View) CurrentColumn() (Column, bool) {
	if v.colCursor < 0 || v.colCursor >= len(v.columns) {
		return Column{}, false
	}
	return v.columns[v.colCursor], true
}

// CellValue returns the text of the selected cell.
func (v *View) CellValue() (string, error) {
	row := v.Selected()
	col, ok := v.CurrentColumn()
	if row == nil || !ok {
		return "", ErrNoSelection
	}
	return v.store.Text(row, col.ID), nil
}

// Expanded reports whether r shows its children.
func (v *View) Expanded(r *store.Row) bool {
	return v.expanded[r]
}

// Toggle expands or collapses r.
func (v *View) Toggle(r *store.Row) {
	if r == nil {
		return
	}
	if v.expanded[r] {
		delete(v.expanded, r)
	} else {
		v.expanded[r] = true
	}
	for row := range v.expanded {
		if !v.store.Contains(row) {
			delete(v.expanded, row)
		}
	}
}

// SortBy sorts by column id, flipping the direction when it is already the
// sort column.
func (v *View) SortBy(id int) bool {
	if !v.store.Sortable(id) {
		return false
	}
	order := store.Ascending
	if col, cur := v.store.SortColumn(); col == id && cur == store.Ascending {
		order = store.Descending
	}
	v.store.SetSortColumn(id, order)
	events.Table.Sort(id, order == store.Descending)
	return true
}

// SortCurrent sorts by the selected column.
func (v *View) SortCurrent() bool {
	col, ok := v.CurrentColumn()
	if !ok {
		return false
	}
	return v.SortBy(col.ID)
}

// MoveColumn moves the selected column delta places, keeping it selected.
func (v *View) MoveColumn(delta int) {
	from := v.colCursor
	to := from + delta
	if from < 0 || from >= len(v.columns) || to < 0 || to >= len(v.columns) {
		return
	}
	if !v.columns[from].Reorderable {
		return
	}
	v.columns[from], v.columns[to] = v.columns[to], v.columns[from]
	v.order = v.order[:0]
	for _, c := range v.columns {
		v.order = append(v.order, c.ID)
	}
	v.colCursor = to
}

// Resize grows or shrinks the selected column by delta cells.
func (v *View) Resize(delta int) {
	col, ok := v.CurrentColumn()
	if !ok || !col.Resizable {
		return
	}
	width := v.widths[col.ID]
	if width == 0 && v.colCursor < len(v.rendered) {
		width = v.rendered[v.colCursor]
	}
	width += delta
	if width < minColumnWidth {
		width = minColumnWidth
	}
	v.widths[col.ID] = width
}

// ColumnAt maps a horizontal cell offset to a column index in display order.
func (v *View) ColumnAt(x int) int {
	if len(v.rendered) == 0 {
		return -1
	}
	x -= ExpanderWidth
	if x < 0 {
		return 0
	}
	offsets := fmttable.Offsets(v.rendered)
	for i := len(offsets) - 1; i >= 0; i-- {
		if x >= offsets[i] {
			return i
		}
	}
	return 0
}

// Click handles a mouse press at (x, y) relative to the table origin, where
// y == 0 is the header row. A left click in the expander margin toggles the
// row's children instead of selecting it. A right click selects the row and
// asks for its context menu.
func (v *View) Click(x, y int, button Button) Click {
	if y == 0 {
		if button != ButtonLeft {
			return Click{Kind: ClickNone}
		}
		idx := v.ColumnAt(x)
		if idx < 0 || idx >= len(v.columns) {
			return Click{Kind: ClickNone}
		}
		v.colCursor = idx
		if v.SortBy(v.columns[idx].ID) {
			return Click{Kind: ClickSorted, Column: v.columns[idx].ID}
		}
		return Click{Kind: ClickNone}
	}
	lines := v.lines
	if lines == nil {
		lines = v.Lines()
	}
	idx := v.offset + y - 1
	if idx < 0 || idx >= len(lines) {
		return Click{Kind: ClickNone}
	}
	line := lines[idx]
	switch button {
	case ButtonRight:
		v.cursor = idx
		return Click{Kind: ClickMenu, Row: line.Row}
	default:
		if x < ExpanderWidth && line.HasChildren {
			v.Toggle(line.Row)
			return Click{Kind: ClickToggled, Row: line.Row}
		}
		v.cursor = idx
		col := -1
		if c := v.ColumnAt(x); c >= 0 {
			v.colCursor = c
			col = v.columns[c].ID
		}
		return Click{Kind: ClickSelected, Row: line.Row, Column: col}
	}
}

// Close ends any edit session the view holds.
func (v *View) Close() {
	if v.session != nil {
		v.session.Cancel()
	}
}

// Render draws the header and as many rows as fit in height, scrolled so
// the cursor stays visible. A width of 0 leaves lines untruncated.
func (v *View) Render(width, height int) string {
	styles := theme.Default()
	lines := v.Lines()
	if height < 1 {
		height = 1
	}
	rowsAvail := height - 1
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if rowsAvail > 0 && v.cursor >= v.offset+rowsAvail {
		v.offset = v.cursor - rowsAvail + 1
	}
	if v.offset > len(lines)-1 {
		v.offset = 0
	}
	end := v.offset + rowsAvail
	if end > len(lines) {
		end = len(lines)
	}
	shown := lines[v.offset:end]

	sortCol, sortOrder := v.store.SortColumn()
	header := make([]string, len(v.columns))
	cols := make([]fmttable.Column, len(v.columns))
	for i, c := range v.columns {
		title := c.Title
		if c.ID == sortCol {
			if sortOrder == store.Descending {
				title += sortDescending
			} else {
				title += sortAscending
			}
		}
		header[i] = title
		cols[i].Width = v.widths[c.ID]
		if c.Type == display.TypeInt {
			cols[i].Align = fmttable.AlignRight
		}
	}

	rows := make([][]string, 0, len(shown)+1)
	rows = append(rows, header)
	for _, line := range shown {
		cells := make([]string, len(v.columns))
		for i, c := range v.columns {
			cells[i] = cellText(line.Values, c.ID)
		}
		if len(cells) > 0 && line.Depth > 0 {
			cells[0] = strings.Repeat("  ", line.Depth) + cells[0]
		}
		rows = append(rows, cells)
	}

	widths := fmttable.Widths(rows)
	for i := range widths {
		if i < len(cols) && cols[i].Width > 0 {
			widths[i] = cols[i].Width
		}
	}
	v.rendered = widths
	formatted := fmttable.Layout(rows, cols)

	var b strings.Builder
	for i, text := range formatted {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == 0 {
			text = clip(markerLeaf+text, width)
			b.WriteString(theme.Render(styles.Header, text))
			continue
		}
		line := shown[i-1]
		marker := markerLeaf
		if line.HasChildren {
			marker = markerCollapsed
			if v.expanded[line.Row] {
				marker = markerExpanded
			}
		}
		text = clip(marker+text, width)
		style := styles.Row
		if v.offset+i-1 == v.cursor {
			style = styles.SelectedRow
		}
		b.WriteString(theme.Render(style, text))
	}
	return b.String()
}

func clip(text string, width int) string {
	if width <= 0 {
		return text
	}
	return fmttable.Truncate(text, width)
}
