package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/format/duration"
	"github.com/atomicstack/sview/internal/store"
	"github.com/atomicstack/sview/internal/table"
)

var ErrUnknownPage = errors.New("unknown page")

type record struct {
	values   []any
	children [][]any
}

// Refresh fills the target's store with the records related to its origin.
// Records are fetched first, so a failed fetch leaves every row as it was.
// Rows are then marked stale, upserted by key and the rest pruned.
func (b *Book) Refresh(ctx context.Context, t display.Target) error {
	sc, err := b.scopeOf(ctx, t.Origin(), t.Identity())
	if err != nil {
		return err
	}
	var records []record
	switch t.Category() {
	case display.Partition:
		records, err = b.partitionRecords(ctx, sc)
	case display.Job:
		records, err = b.jobRecords(ctx, sc)
	case display.Node:
		records, err = b.nodeRecords(ctx, sc)
	case display.Block:
		records, err = b.blockRecords(ctx, sc)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPage, t.Category())
	}
	if err != nil {
		return err
	}
	return apply(t.Store(), t.Category(), records)
}

func apply(st *store.TreeStore, c display.Category, records []record) error {
	key := keyColumn(c)
	liveCol := liveColumn(c)
	if err := st.SetAll(liveCol, 0); err != nil {
		return err
	}
	index := make(map[string]*store.Row)
	for _, r := range st.Roots() {
		index[st.Text(r, key)] = r
	}
	for _, rec := range records {
		id, _ := rec.values[key].(string)
		row := index[id]
		if row == nil {
			row = st.Append(nil)
			index[id] = row
		}
		if err := st.SetRow(row, rec.values...); err != nil {
			return fmt.Errorf("%s %s: %w", c, id, err)
		}
		for _, child := range rec.children {
			if err := upsertChild(st, row, c, child); err != nil {
				return fmt.Errorf("%s %s: %w", c, id, err)
			}
		}
	}
	table.PruneStale(st, liveCol)
	return nil
}

// upsertChild places values under parent, matched by the child key column.
func upsertChild(st *store.TreeStore, parent *store.Row, c display.Category, values []any) error {
	col := childKeyColumn(c)
	row := st.Find(parent, col, values[col])
	if row == nil {
		row = st.Append(parent)
	}
	return st.SetRow(row, values...)
}

func childKeyColumn(c display.Category) int {
	if c == display.Partition {
		return PartState
	}
	return keyColumn(c)
}

// scope is the set of objects related to a popup's origin row. A nil scope
// matches everything.
type scope struct {
	origin     display.Category
	id         string
	nodes      map[string]bool
	partitions map[string]bool
}

func (b *Book) scopeOf(ctx context.Context, origin display.Category, id string) (*scope, error) {
	if !origin.Known() || id == "" {
		return nil, nil
	}
	sc := &scope{
		origin:     origin,
		id:         id,
		nodes:      make(map[string]bool),
		partitions: make(map[string]bool),
	}
	switch origin {
	case display.Partition:
		parts, err := b.source.Partitions(ctx)
		if err != nil {
			return nil, err
		}
		sc.partitions[id] = true
		for _, p := range parts {
			if p.Name == id {
				addHosts(sc.nodes, p.NodeList())
			}
		}
	case display.Job:
		jobs, err := b.source.Jobs(ctx)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs {
			if j.ID == id {
				addHosts(sc.nodes, j.NodeList)
				for _, p := range splitList(j.Partition) {
					sc.partitions[p] = true
				}
			}
		}
	case display.Node:
		nodes, err := b.source.Nodes(ctx)
		if err != nil {
			return nil, err
		}
		sc.nodes[id] = true
		for _, n := range nodes {
			if n.Name == id {
				for _, p := range n.Partitions {
					sc.partitions[p] = true
				}
			}
		}
	case display.Block:
		blocks, err := b.source.Blocks(ctx)
		if err != nil {
			return nil, err
		}
		for _, bl := range blocks {
			if bl.ID == id {
				addHosts(sc.nodes, bl.NodeList)
			}
		}
	}
	return sc, nil
}

func addHosts(set map[string]bool, list string) {
	hosts, err := cluster.ExpandHostlist(list)
	if err != nil {
		return
	}
	for _, h := range hosts {
		set[h] = true
	}
}

func (sc *scope) overlaps(list string) bool {
	hosts, err := cluster.ExpandHostlist(list)
	if err != nil {
		return false
	}
	for _, h := range hosts {
		if sc.nodes[h] {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (sc *scope) partition(p cluster.Partition) bool {
	if sc == nil {
		return true
	}
	switch sc.origin {
	case display.Partition, display.Job, display.Node:
		return sc.partitions[p.Name]
	default:
		return sc.overlaps(p.NodeList())
	}
}

func (sc *scope) job(j cluster.Job) bool {
	if sc == nil {
		return true
	}
	switch sc.origin {
	case display.Job:
		return j.ID == sc.id
	case display.Partition:
		for _, p := range splitList(j.Partition) {
			if p == sc.id {
				return true
			}
		}
		return false
	default:
		return sc.overlaps(j.NodeList)
	}
}

func (sc *scope) node(n cluster.Node) bool {
	if sc == nil {
		return true
	}
	if sc.nodes[n.Name] {
		return true
	}
	if sc.origin == display.Partition {
		for _, p := range n.Partitions {
			if p == sc.id {
				return true
			}
		}
	}
	return false
}

func (sc *scope) block(bl cluster.Block) bool {
	if sc == nil {
		return true
	}
	if sc.origin == display.Block {
		return bl.ID == sc.id
	}
	return sc.overlaps(bl.NodeList)
}

func (b *Book) partitionRecords(ctx context.Context, sc *scope) ([]record, error) {
	parts, err := b.source.Partitions(ctx)
	if err != nil {
		return nil, err
	}
	var out []record
	for _, p := range parts {
		if !sc.partition(p) {
			continue
		}
		limit := duration.Format(p.TimeLimit)
		rec := record{values: []any{p.Name, p.Avail, limit, p.Nodes(), p.State(), p.NodeList(), 1}}
		if len(p.Groups) > 1 {
			for _, g := range p.Groups {
				rec.children = append(rec.children, []any{p.Name, p.Avail, limit, g.Count, g.State, g.NodeList, 1})
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *Book) jobRecords(ctx context.Context, sc *scope) ([]record, error) {
	jobs, err := b.source.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	var out []record
	for _, j := range jobs {
		if !sc.job(j) {
			continue
		}
		out = append(out, record{values: []any{
			j.ID, j.Partition, j.Name, j.User, j.State,
			duration.Format(j.Elapsed), duration.Format(j.TimeLimit),
			j.NodeCount, j.NodeList, 1,
		}})
	}
	return out, nil
}

func (b *Book) nodeRecords(ctx context.Context, sc *scope) ([]record, error) {
	nodes, err := b.source.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	var out []record
	for _, n := range nodes {
		if !sc.node(n) {
			continue
		}
		out = append(out, record{values: []any{
			n.Name, n.State, n.CPUs, n.MemoryMB, strings.Join(n.Partitions, ","), 1,
		}})
	}
	return out, nil
}

func (b *Book) blockRecords(ctx context.Context, sc *scope) ([]record, error) {
	blocks, err := b.source.Blocks(ctx)
	if err != nil {
		return nil, err
	}
	var out []record
	for _, bl := range blocks {
		if !sc.block(bl) {
			continue
		}
		out = append(out, record{values: []any{
			bl.ID, bl.State, bl.User, bl.ConnType, bl.NodeList, 1,
		}})
	}
	return out, nil
}
