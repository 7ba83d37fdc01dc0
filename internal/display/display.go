// Package display declares the descriptors that drive every table, menu and
// popup: which columns exist, how they render, where their rows drill down
// to, and which page-specific behaviour is injected through capabilities.
package display

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/sview/internal/store"
)

// SentinelID terminates a Descriptors slice.
const SentinelID = -1

var (
	ErrMissingSentinel = errors.New("descriptors are not terminated by a sentinel")
	ErrDuplicateID     = errors.New("duplicate descriptor id")
	ErrNegativeID      = errors.New("negative descriptor id")
)

// Type is the semantic type of a column.
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeText
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeText:
		return "text"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Known reports whether t is a type the table builder can render and sort.
func (t Type) Known() bool {
	return t == TypeInt || t == TypeText
}

// Kind maps t onto the store column kind; unknown types map to store.KindAny.
func (t Type) Kind() store.Kind {
	switch t {
	case TypeInt:
		return store.KindInt
	case TypeText:
		return store.KindText
	default:
		return store.KindAny
	}
}

// EditMode controls whether and how a column can be edited.
type EditMode int

const (
	ReadOnly EditMode = iota
	// Editable is plain text, or a fixed choice when the column has a model.
	Editable
	// ComboEntry offers the model's choices but also accepts custom text.
	ComboEntry
)

// Category identifies a page and the destination of a drill-down.
type Category int

const (
	None Category = iota
	Partition
	Job
	Node
	Block
)

// Categories lists every known category in page order.
var Categories = []Category{Partition, Job, Node, Block}

func (c Category) String() string {
	switch c {
	case None:
		return "none"
	case Partition:
		return "partition"
	case Job:
		return "job"
	case Node:
		return "node"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Known reports whether c names a page.
func (c Category) Known() bool {
	return c >= Partition && c <= Block
}

// ParseCategory accepts singular or plural page names, case-insensitively.
func ParseCategory(name string) (Category, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s")
	for _, c := range Categories {
		if c.String() == key {
			return c, nil
		}
	}
	return None, fmt.Errorf("unknown page %q", name)
}

// Edit is handed to an EditCommit callback.
type Edit struct {
	Column int
	Value  string
	Store  *store.TreeStore
	Row    *store.Row
	Data   any
}

// Selection identifies the row a context menu was opened on.
type Selection struct {
	Category Category
	Identity string
	Store    *store.TreeStore
	Row      *store.Row
}

// Target is what a refresh repopulates: a main page table or a popup.
type Target interface {
	Title() string
	Identity() string
	Category() Category
	Origin() Category
	Store() *store.TreeStore
	Columns() Descriptors
}

type (
	ModelFactory func(id int) []string
	EditCommit   func(Edit) error
	MenuBuilder  func(Selection) Descriptors
	RefreshFunc  func(context.Context, Target) error
)

// Capabilities carries page-specific behaviour. A nil capability removes the
// matching affordance.
type Capabilities struct {
	Model   ModelFactory
	Commit  EditCommit
	Menu    MenuBuilder
	Refresh RefreshFunc
}

// Descriptor declares one column, option or page. ID, Name and Type are fixed
// once built; only Visible and Data change afterwards.
type Descriptor struct {
	ID      int
	Name    string
	Type    Type
	Visible bool
	Edit    EditMode
	Dest    Category
	Caps    Capabilities
	Data    any
}

// Sentinel returns the terminating descriptor.
func Sentinel() Descriptor {
	return Descriptor{ID: SentinelID}
}

// IsSentinel reports whether d terminates a slice.
func (d Descriptor) IsSentinel() bool {
	return d.ID == SentinelID
}

// Choices returns the model for d, or nil when it has none.
func (d Descriptor) Choices() []string {
	if d.Caps.Model == nil {
		return nil
	}
	return d.Caps.Model(d.ID)
}

// Descriptors is an ordered descriptor table terminated by Sentinel.
type Descriptors []Descriptor

// Each calls fn for every entry before the sentinel until fn returns false.
// fn receives a pointer into the slice so Visible and Data can be updated.
func (ds Descriptors) Each(fn func(*Descriptor) bool) {
	for i := range ds {
		if ds[i].IsSentinel() {
			return
		}
		if !fn(&ds[i]) {
			return
		}
	}
}

// Len counts the entries before the sentinel.
func (ds Descriptors) Len() int {
	n := 0
	ds.Each(func(*Descriptor) bool {
		n++
		return true
	})
	return n
}

// Named counts the named entries before the sentinel.
func (ds Descriptors) Named() int {
	n := 0
	ds.Each(func(d *Descriptor) bool {
		if d.Name != "" {
			n++
		}
		return true
	})
	return n
}

// Find returns the entry with the given id.
func (ds Descriptors) Find(id int) (*Descriptor, bool) {
	var found *Descriptor
	ds.Each(func(d *Descriptor) bool {
		if d.ID == id {
			found = d
			return false
		}
		return true
	})
	return found, found != nil
}

// Index returns the id of the entry named name, case-insensitively, or -1.
func (ds Descriptors) Index(name string) int {
	id := -1
	ds.Each(func(d *Descriptor) bool {
		if d.Name != "" && strings.EqualFold(d.Name, name) {
			id = d.ID
			return false
		}
		return true
	})
	return id
}

// Validate checks the sentinel and the ids before it.
func (ds Descriptors) Validate() error {
	seen := make(map[int]struct{}, len(ds))
	for _, d := range ds {
		if d.IsSentinel() {
			return nil
		}
		if d.ID < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeID, d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return ErrMissingSentinel
}

// Clone copies the slice so visibility and data changes stay local.
func (ds Descriptors) Clone() Descriptors {
	if ds == nil {
		return nil
	}
	return append(Descriptors(nil), ds...)
}

// Kinds returns the store column kind of each entry before the sentinel.
func (ds Descriptors) Kinds() []store.Kind {
	kinds := make([]store.Kind, 0, len(ds))
	ds.Each(func(d *Descriptor) bool {
		kinds = append(kinds, d.Type.Kind())
		return true
	})
	return kinds
}
