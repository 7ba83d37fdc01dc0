// Package cluster reads Slurm cluster state and applies admin updates. Exec
// talks to the Slurm command line tools; Static serves canned data for demo
// mode and tests.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"
)

var (
	ErrUnsupported = errors.New("not supported by this cluster")
	ErrNotFound    = errors.New("no such object")
	ErrBadUpdate   = errors.New("invalid update")
)

// NodeGroup is the set of a partition's nodes sharing one state.
type NodeGroup struct {
	State    string
	Count    int
	NodeList string
}

// Partition is one sinfo partition with its per-state node groups.
type Partition struct {
	Name      string
	Default   bool
	Avail     string
	TimeLimit time.Duration
	Groups    []NodeGroup
}

// Nodes returns the node count over every group.
func (p Partition) Nodes() int {
	total := 0
	for _, g := range p.Groups {
		total += g.Count
	}
	return total
}

// State summarises the group states, most populated first.
func (p Partition) State() string {
	if len(p.Groups) == 0 {
		return ""
	}
	best := p.Groups[0]
	for _, g := range p.Groups[1:] {
		if g.Count > best.Count {
			best = g
		}
	}
	if len(p.Groups) == 1 {
		return best.State
	}
	return best.State + "+"
}

// NodeList joins the group node lists.
func (p Partition) NodeList() string {
	lists := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		if g.NodeList != "" {
			lists = append(lists, g.NodeList)
		}
	}
	return strings.Join(lists, ",")
}

// Job is one squeue entry.
type Job struct {
	ID        string
	Name      string
	User      string
	State     string
	Partition string
	Elapsed   time.Duration
	TimeLimit time.Duration
	NodeCount int
	NodeList  string
}

// Node is one sinfo node entry. A node in several partitions is reported
// once with every partition listed.
type Node struct {
	Name       string
	State      string
	CPUs       int
	MemoryMB   int
	Partitions []string
}

// Block is one BlueGene block from scontrol.
type Block struct {
	ID       string
	State    string
	User     string
	ConnType string
	NodeList string
}

// Source reads cluster state.
type Source interface {
	Partitions(ctx context.Context) ([]Partition, error)
	Jobs(ctx context.Context) ([]Job, error)
	Nodes(ctx context.Context) ([]Node, error)
	Blocks(ctx context.Context) ([]Block, error)
}

// Entity names the scontrol object an update targets.
type Entity string

const (
	EntityPartition Entity = "PartitionName"
	EntityJob       Entity = "JobId"
	EntityNode      Entity = "NodeName"
	EntityBlock     Entity = "BlockName"
)

// Update is one scontrol update of a single field.
type Update struct {
	Entity Entity
	ID     string
	Field  string
	Value  string
	Reason string
}

// Validate rejects updates scontrol would misparse.
func (u Update) Validate() error {
	switch {
	case u.Entity == "":
		return fmt.Errorf("%w: missing entity", ErrBadUpdate)
	case strings.TrimSpace(u.ID) == "":
		return fmt.Errorf("%w: missing %s", ErrBadUpdate, u.Entity)
	case strings.TrimSpace(u.Field) == "":
		return fmt.Errorf("%w: missing field", ErrBadUpdate)
	case strings.ContainsAny(u.Value, "\n\r"):
		return fmt.Errorf("%w: multi-line value", ErrBadUpdate)
	}
	return nil
}

// Args returns the scontrol arguments for u.
func (u Update) Args() []string {
	args := []string{
		"update",
		string(u.Entity) + "=" + u.ID,
		u.Field + "=" + u.Value,
	}
	if u.Reason != "" {
		args = append(args, "Reason="+u.Reason)
	}
	return args
}

// Admin applies updates.
type Admin interface {
	Update(ctx context.Context, u Update) error
}

// FormatReason appends who changed a state and when, the way scontrol
// reasons are conventionally stamped.
func FormatReason(reason, who string, now time.Time) string {
	reason = strings.TrimSpace(reason)
	if who == "" {
		who = CurrentUser()
	}
	return fmt.Sprintf("%s [%s@%s]", reason, who, now.Format("2006-01-02T15:04:05"))
}

// CurrentUser returns the login name of the running user.
func CurrentUser() string {
	u, err := user.Current()
	if err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// NeedsReason reports whether Slurm requires a reason for a node state.
func NeedsReason(state string) bool {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "DRAIN", "DOWN", "FAIL", "FAILING":
		return true
	}
	return false
}
