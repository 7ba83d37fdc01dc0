// Package pages declares what each page shows: the columns of partitions,
// jobs, nodes and blocks, the drill-down options of their rows, the refresh
// that fills a table from the cluster, and the admin edits a cell can make.
package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/popup"
	"github.com/atomicstack/sview/internal/store"
)

const defaultCommitTimeout = 10 * time.Second

// Options configures a Book.
type Options struct {
	// Admin enables cell edits that run scontrol update.
	Admin bool
	// Blocks shows the BlueGene block page.
	Blocks bool
	// CommitTimeout bounds one admin update.
	CommitTimeout time.Duration
	// Hidden lists column names hidden at start, keyed by page name.
	Hidden map[string][]string
	// User stamps node state reasons; empty means the login user.
	User string
}

// Book is the page registry.
type Book struct {
	source   cluster.Source
	admin    cluster.Admin
	opts     Options
	now      func() time.Time
	onCommit func()
}

// New returns a book that reads from source and edits through admin. admin
// may be nil, which disables editing.
func New(source cluster.Source, admin cluster.Admin, opts Options) *Book {
	if opts.CommitTimeout <= 0 {
		opts.CommitTimeout = defaultCommitTimeout
	}
	return &Book{source: source, admin: admin, opts: opts, now: time.Now}
}

// OnCommit registers fn to run after every successful edit.
func (b *Book) OnCommit(fn func()) {
	b.onCommit = fn
}

// Editable reports whether cells can be edited.
func (b *Book) Editable() bool {
	return b.opts.Admin && b.admin != nil
}

// Name returns the tab label of category c.
func Name(c display.Category) string {
	switch c {
	case display.Partition:
		return "Partitions"
	case display.Job:
		return "Jobs"
	case display.Node:
		return "Nodes"
	case display.Block:
		return "Blocks"
	}
	return c.String()
}

// Categories returns the enabled pages in tab order.
func (b *Book) Categories() []display.Category {
	out := []display.Category{display.Job, display.Partition, display.Node}
	if b.opts.Blocks {
		out = append(out, display.Block)
	}
	return out
}

// Pages returns one descriptor per enabled page, carrying the page's menu
// and refresh capabilities.
func (b *Book) Pages() display.Descriptors {
	descs := make(display.Descriptors, 0, 5)
	for i, c := range b.Categories() {
		descs = append(descs, display.Descriptor{
			ID:      i,
			Name:    Name(c),
			Visible: true,
			Dest:    c,
			Caps: display.Capabilities{
				Menu:    b.optionsFor(c),
				Refresh: b.Refresh,
			},
		})
	}
	return append(descs, display.Sentinel())
}

// Columns returns a fresh column descriptor table for category c with the
// capabilities bound and the configured columns hidden.
func (b *Book) Columns(c display.Category) display.Descriptors {
	var descs display.Descriptors
	switch c {
	case display.Partition:
		descs = partitionColumns()
	case display.Job:
		descs = jobColumns()
	case display.Node:
		descs = nodeColumns()
	case display.Block:
		descs = blockColumns()
	default:
		return display.Descriptors{display.Sentinel()}
	}
	hidden := make(map[string]bool)
	for key, names := range b.opts.Hidden {
		if cat, err := display.ParseCategory(key); err == nil && cat == c {
			for _, n := range names {
				hidden[strings.ToLower(n)] = true
			}
		}
	}
	model := choices(c)
	commit := b.commitFor(c)
	descs.Each(func(d *display.Descriptor) bool {
		if hidden[strings.ToLower(d.Name)] {
			d.Visible = false
		}
		if d.Edit != display.ReadOnly {
			d.Caps.Model = model
			if b.Editable() {
				d.Caps.Commit = commit
			}
		}
		return true
	})
	return descs
}

// KeyColumn is the column identifying a row of category c.
func KeyColumn(c display.Category) int {
	return keyColumn(c)
}

// LiveColumn is the still-present mark of category c.
func LiveColumn(c display.Category) int {
	return liveColumn(c)
}

// Selection identifies row for a context menu. Partition state rows resolve
// to their partition.
func Selection(c display.Category, st *store.TreeStore, row *store.Row) display.Selection {
	top := row
	for top != nil {
		parent := st.Parent(top)
		if parent == nil {
			break
		}
		top = parent
	}
	return display.Selection{
		Category: c,
		Identity: st.Text(top, keyColumn(c)),
		Store:    st,
		Row:      row,
	}
}

// optionsFor builds the drill-down options offered on a row of category c.
func (b *Book) optionsFor(c display.Category) display.MenuBuilder {
	return func(sel display.Selection) display.Descriptors {
		if sel.Identity == "" {
			return display.Descriptors{display.Sentinel()}
		}
		dests := []display.Category{c}
		for _, d := range b.Categories() {
			if d != c {
				dests = append(dests, d)
			}
		}
		descs := make(display.Descriptors, 0, len(dests)+1)
		for i, d := range dests {
			name := Name(d)
			if d == c {
				name = "Info"
			}
			descs = append(descs, display.Descriptor{ID: i, Name: name, Dest: d, Visible: true})
		}
		return append(descs, display.Sentinel())
	}
}

// Title names the popup an option opens for sel.
func Title(option string, dest display.Category, sel display.Selection) string {
	if dest == sel.Category || option == "Info" {
		return fmt.Sprintf("%s %s", capitalize(sel.Category.String()), sel.Identity)
	}
	return fmt.Sprintf("%s for %s %s", option, sel.Category, sel.Identity)
}

// Request describes the popup that option opens for sel.
func (b *Book) Request(dest display.Category, sel display.Selection, option *display.Descriptor) popup.Request {
	name := Name(dest)
	if option != nil {
		name = option.Name
	}
	return popup.Request{
		Key: popup.Key{
			RowType: int(sel.Category),
			Dest:    dest,
			Title:   Title(name, dest, sel),
		},
		Identity: sel.Identity,
		Origin:   sel.Category,
		Columns:  b.Columns(dest),
		Refresh:  b.Refresh,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
