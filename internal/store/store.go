// Package store holds hierarchical rows with typed columns. Rows are sorted
// lazily by a per-column comparator and may be removed while walking the
// tree without skipping their successor.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind is the value type held by a column.
type Kind int

const (
	// KindAny is an untyped column; it accepts any value and is never sorted.
	KindAny Kind = iota
	KindInt
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindText:
		return "text"
	default:
		return "any"
	}
}

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Unsorted is the sort column reported before any sort column is set.
const Unsorted = -1

// CompareFunc orders two column values.
type CompareFunc func(a, b any) int

var (
	ErrColumnRange  = errors.New("column out of range")
	ErrKindMismatch = errors.New("value does not match column kind")
	ErrNoRow        = errors.New("row not in store")
)

// Row is an opaque handle to a stored row. Its contents are read and written
// through the owning TreeStore.
type Row struct {
	parent   *Row
	children []*Row
	values   []any
	seq      uint64
	removed  bool
}

// TreeStore is safe for concurrent use.
type TreeStore struct {
	mu        sync.RWMutex
	kinds     []Kind
	roots     []*Row
	count     int
	seq       uint64
	sortFuncs map[int]CompareFunc
	sortCol   int
	order     Order
	dirty     bool
}

// New allocates a store whose columns hold exactly the given kinds.
func New(kinds ...Kind) *TreeStore {
	return &TreeStore{
		kinds:     append([]Kind(nil), kinds...),
		sortFuncs: make(map[int]CompareFunc),
		sortCol:   Unsorted,
	}
}

// Columns returns the number of columns.
func (s *TreeStore) Columns() int {
	return len(s.kinds)
}

// Kind returns the kind of col, or KindAny when col is out of range.
func (s *TreeStore) Kind(col int) Kind {
	if col < 0 || col >= len(s.kinds) {
		return KindAny
	}
	return s.kinds[col]
}

// Len returns the total number of rows at every depth.
func (s *TreeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Append adds an empty row under parent, or at the top level when parent is nil.
func (s *TreeStore) Append(parent *Row) *Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r := &Row{parent: parent, values: make([]any, len(s.kinds)), seq: s.seq}
	for i, k := range s.kinds {
		if k == KindInt {
			r.values[i] = 0
		}
	}
	if parent == nil {
		s.roots = append(s.roots, r)
	} else {
		parent.children = append(parent.children, r)
	}
	s.count++
	s.dirty = true
	return r
}

// Set stores v in col of r after checking it against the column kind.
func (s *TreeStore) Set(r *Row, col int, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(r, col, v)
}

// SetRow assigns values to consecutive columns starting at column 0.
func (s *TreeStore) SetRow(r *Row, values ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for col, v := range values {
		if err := s.setLocked(r, col, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *TreeStore) setLocked(r *Row, col int, v any) error {
	if r == nil || r.removed {
		return ErrNoRow
	}
	if col < 0 || col >= len(s.kinds) {
		return fmt.Errorf("%w: %d", ErrColumnRange, col)
	}
	switch s.kinds[col] {
	case KindInt:
		n, ok := v.(int)
		if !ok {
			return fmt.Errorf("%w: column %d wants int, got %T", ErrKindMismatch, col, v)
		}
		v = n
	case KindText:
		if v != nil {
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: column %d wants text, got %T", ErrKindMismatch, col, v)
			}
		}
	}
	r.values[col] = v
	if col == s.sortCol {
		s.dirty = true
	}
	return nil
}

// SetAll stores v in col of every row.
func (s *TreeStore) SetAll(col int, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	walk(s.roots, func(r *Row) bool {
		err = s.setLocked(r, col, v)
		return err == nil
	})
	return err
}

// Value returns the raw value of col in r.
func (s *TreeStore) Value(r *Row, col int) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r == nil || col < 0 || col >= len(r.values) {
		return nil
	}
	return r.values[col]
}

// Int returns col of r as an int, or 0 when unset.
func (s *TreeStore) Int(r *Row, col int) int {
	n, _ := s.Value(r, col).(int)
	return n
}

// Text returns col of r as a string; nil text reads as "".
func (s *TreeStore) Text(r *Row, col int) string {
	switch v := s.Value(r, col).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Values returns a copy of every column value of r.
func (s *TreeStore) Values(r *Row) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r == nil {
		return nil
	}
	return append([]any(nil), r.values...)
}

// Parent returns the parent of r, or nil for a top-level row.
func (s *TreeStore) Parent(r *Row) *Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r == nil {
		return nil
	}
	return r.parent
}

// Roots returns the top-level rows in sort order.
func (s *TreeStore) Roots() []*Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
	return append([]*Row(nil), s.roots...)
}

// Children returns the children of r in sort order.
func (s *TreeStore) Children(r *Row) []*Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
	if r == nil {
		return nil
	}
	return append([]*Row(nil), r.children...)
}

// HasChildren reports whether r has child rows.
func (s *TreeStore) HasChildren(r *Row) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return r != nil && len(r.children) > 0
}

// Contains reports whether r is still held by the store.
func (s *TreeStore) Contains(r *Row) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return r != nil && !r.removed
}

// First returns the first row in pre-order, or nil when the store is empty.
func (s *TreeStore) First() *Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
	if len(s.roots) == 0 {
		return nil
	}
	return s.roots[0]
}

// Next returns the pre-order successor of r.
func (s *TreeStore) Next(r *Row) *Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
	if r == nil {
		return nil
	}
	if len(r.children) > 0 {
		return r.children[0]
	}
	return s.successorLocked(r)
}

// Find returns the first child of parent, or top-level row when parent is
// nil, whose col equals v. Only int and text columns are searched; an
// untyped column may hold values that cannot be compared, so it never
// matches.
func (s *TreeStore) Find(parent *Row, col int, v any) *Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if col < 0 || col >= len(s.kinds) || s.kinds[col] == KindAny {
		return nil
	}
	rows := s.roots
	if parent != nil {
		rows = parent.children
	}
	for _, r := range rows {
		if col >= 0 && col < len(r.values) && r.values[col] == v {
			return r
		}
	}
	return nil
}

// Line is one rendered row of a Lines snapshot.
type Line struct {
	Row         *Row
	Depth       int
	Values      []any
	HasChildren bool
}

// Lines returns the rows in sort order, descending only into rows for which
// expanded reports true. A nil expanded shows every row. expanded runs under
// the store lock and must not call back into the store.
func (s *TreeStore) Lines(expanded func(*Row) bool) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
	out := make([]Line, 0, s.count)
	var visit func(rows []*Row, depth int)
	visit = func(rows []*Row, depth int) {
		for _, r := range rows {
			out = append(out, Line{
				Row:         r,
				Depth:       depth,
				Values:      append([]any(nil), r.values...),
				HasChildren: len(r.children) > 0,
			})
			if len(r.children) > 0 && (expanded == nil || expanded(r)) {
				visit(r.children, depth+1)
			}
		}
	}
	visit(s.roots, 0)
	return out
}

// Walk visits every row in pre-order until fn returns false.
func (s *TreeStore) Walk(fn func(*Row) bool) {
	s.mu.Lock()
	s.sortLocked()
	rows := make([]*Row, 0, s.count)
	walk(s.roots, func(r *Row) bool {
		rows = append(rows, r)
		return true
	})
	s.mu.Unlock()
	for _, r := range rows {
		if !fn(r) {
			return
		}
	}
}

// Remove deletes r and its subtree and returns the row that followed the
// subtree in pre-order, so a walk can continue without skipping.
func (s *TreeStore) Remove(r *Row) *Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(r)
}

func (s *TreeStore) removeLocked(r *Row) *Row {
	if r == nil || r.removed {
		return nil
	}
	next := s.successorLocked(r)
	siblings := &s.roots
	if r.parent != nil {
		siblings = &r.parent.children
	}
	for i, sib := range *siblings {
		if sib == r {
			*siblings = append((*siblings)[:i], (*siblings)[i+1:]...)
			break
		}
	}
	walk([]*Row{r}, func(x *Row) bool {
		x.removed = true
		s.count--
		return true
	})
	return next
}

// Clear removes every row.
func (s *TreeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	walk(s.roots, func(r *Row) bool {
		r.removed = true
		return true
	})
	s.roots = nil
	s.count = 0
}

// PruneStale removes every row whose live column holds 0 and returns the
// number of rows removed. Rows keep their relative order.
func (s *TreeStore) PruneStale(col int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || col >= len(s.kinds) {
		return 0
	}
	removed := 0
	var r *Row
	if len(s.roots) > 0 {
		r = s.roots[0]
	}
	for r != nil {
		if live, _ := r.values[col].(int); live == 0 {
			before := s.count
			r = s.removeLocked(r)
			removed += before - s.count
			continue
		}
		if len(r.children) > 0 {
			r = r.children[0]
			continue
		}
		r = s.successorLocked(r)
	}
	return removed
}

// successorLocked returns the pre-order successor of r skipping its subtree.
func (s *TreeStore) successorLocked(r *Row) *Row {
	for cur := r; cur != nil; cur = cur.parent {
		siblings := s.roots
		if cur.parent != nil {
			siblings = cur.parent.children
		}
		for i, sib := range siblings {
			if sib == cur {
				if i+1 < len(siblings) {
					return siblings[i+1]
				}
				break
			}
		}
	}
	return nil
}

func walk(rows []*Row, fn func(*Row) bool) bool {
	for _, r := range rows {
		if !fn(r) {
			return false
		}
		if !walk(r.children, fn) {
			return false
		}
	}
	return true
}

// SetSortFunc registers the comparator used when col is the sort column.
func (s *TreeStore) SetSortFunc(col int, fn CompareFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.sortFuncs, col)
	} else {
		s.sortFuncs[col] = fn
	}
	if col == s.sortCol {
		s.dirty = true
	}
}

// Sortable reports whether a comparator is registered for col.
func (s *TreeStore) Sortable(col int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sortFuncs[col]
	return ok
}

// SetSortColumn selects the sort column and direction.
func (s *TreeStore) SetSortColumn(col int, order Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortCol = col
	s.order = order
	s.dirty = true
}

// SortColumn reports the current sort column and direction.
func (s *TreeStore) SortColumn() (int, Order) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortCol, s.order
}

func (s *TreeStore) sortLocked() {
	if !s.dirty {
		return
	}
	s.dirty = false
	fn, ok := s.sortFuncs[s.sortCol]
	if !ok {
		return
	}
	col, order := s.sortCol, s.order
	var sortRows func([]*Row)
	sortRows = func(rows []*Row) {
		sort.SliceStable(rows, func(i, j int) bool {
			c := fn(rows[i].values[col], rows[j].values[col])
			if c == 0 {
				return rows[i].seq < rows[j].seq
			}
			if order == Descending {
				return c > 0
			}
			return c < 0
		})
		for _, r := range rows {
			sortRows(r.children)
		}
	}
	sortRows(s.roots)
}

// CompareInt orders two int column values numerically.
func CompareInt(a, b any) int {
	x, _ := a.(int)
	y, _ := b.(int)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
