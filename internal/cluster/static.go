package cluster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/format/duration"
)

// Static is an in-memory cluster. Updates change its records, and running
// jobs age with the clock.
type Static struct {
	mu         sync.Mutex
	partitions []Partition
	jobs       []Job
	nodes      []Node
	blocks     []Block
	now        func() time.Time
	started    time.Time
	updates    []Update
}

// NewStatic returns a cluster holding copies of the given records.
func NewStatic(partitions []Partition, jobs []Job, nodes []Node, blocks []Block) *Static {
	s := &Static{
		partitions: append([]Partition(nil), partitions...),
		jobs:       append([]Job(nil), jobs...),
		nodes:      append([]Node(nil), nodes...),
		blocks:     append([]Block(nil), blocks...),
		now:        time.Now,
	}
	s.started = s.now()
	return s
}

// SetClock replaces the clock used to age running jobs.
func (s *Static) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.started = now()
}

// Demo returns a small cluster for running without Slurm.
func Demo() *Static {
	return NewStatic(
		[]Partition{
			{Name: "debug", Default: true, Avail: "UP", TimeLimit: time.Hour, Groups: []NodeGroup{
				{State: "idle", Count: 2, NodeList: "node[01-02]"},
				{State: "mix", Count: 1, NodeList: "node03"},
			}},
			{Name: "batch", Avail: "UP", TimeLimit: 2 * 24 * time.Hour, Groups: []NodeGroup{
				{State: "alloc", Count: 8, NodeList: "node[04-11]"},
				{State: "drain", Count: 1, NodeList: "node12"},
			}},
			{Name: "gpu", Avail: "UP", TimeLimit: duration.Unlimited, Groups: []NodeGroup{
				{State: "mix", Count: 2, NodeList: "gpu[1-2]"},
			}},
		},
		[]Job{
			{ID: "1001", Name: "train-resnet", User: "alice", State: "RUNNING", Partition: "gpu",
				Elapsed: 3*time.Hour + 12*time.Minute, TimeLimit: duration.Unlimited, NodeCount: 2, NodeList: "gpu[1-2]"},
			{ID: "1002", Name: "mpi-cfd", User: "bob", State: "RUNNING", Partition: "batch",
				Elapsed: 26 * time.Hour, TimeLimit: 2 * 24 * time.Hour, NodeCount: 8, NodeList: "node[04-11]"},
			{ID: "1003", Name: "interactive", User: "carol", State: "RUNNING", Partition: "debug",
				Elapsed: 5 * time.Minute, TimeLimit: time.Hour, NodeCount: 1, NodeList: "node03"},
			{ID: "1004", Name: "post-process", User: "bob", State: "PENDING", Partition: "batch",
				TimeLimit: 4 * time.Hour, NodeCount: 2},
			{ID: "1010", Name: "sweep-2", User: "alice", State: "PENDING", Partition: "gpu",
				TimeLimit: 30 * time.Minute, NodeCount: 1},
		},
		[]Node{
			{Name: "node01", State: "idle", CPUs: 32, MemoryMB: 128000, Partitions: []string{"debug"}},
			{Name: "node02", State: "idle", CPUs: 32, MemoryMB: 128000, Partitions: []string{"debug"}},
			{Name: "node03", State: "mix", CPUs: 32, MemoryMB: 128000, Partitions: []string{"debug"}},
			{Name: "node04", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node05", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node06", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node07", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node08", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node09", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node10", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node11", State: "alloc", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "node12", State: "drain", CPUs: 64, MemoryMB: 256000, Partitions: []string{"batch"}},
			{Name: "gpu1", State: "mix", CPUs: 48, MemoryMB: 512000, Partitions: []string{"gpu"}},
			{Name: "gpu2", State: "mix", CPUs: 48, MemoryMB: 512000, Partitions: []string{"gpu"}},
		},
		[]Block{
			{ID: "RMP0", State: "FREE", ConnType: "TORUS", NodeList: "node[01-03]"},
			{ID: "RMP1", State: "INITED", User: "bob", ConnType: "MESH", NodeList: "node[04-11]"},
		},
	)
}

func (s *Static) Partitions(context.Context) ([]Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Partition, len(s.partitions))
	for i, p := range s.partitions {
		p.Groups = append([]NodeGroup(nil), p.Groups...)
		out[i] = p
	}
	return out, nil
}

func (s *Static) Jobs(context.Context) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aged := s.now().Sub(s.started)
	out := append([]Job(nil), s.jobs...)
	for i := range out {
		if out[i].State == "RUNNING" {
			out[i].Elapsed += aged
		}
	}
	return out, nil
}

func (s *Static) Nodes(context.Context) ([]Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		n.Partitions = append([]string(nil), n.Partitions...)
		out[i] = n
	}
	return out, nil
}

func (s *Static) Blocks(context.Context) ([]Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Block(nil), s.blocks...), nil
}

// Updates returns every update applied so far.
func (s *Static) Updates() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Update(nil), s.updates...)
}

// Update applies u to the in-memory records.
func (s *Static) Update(_ context.Context, u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply(u); err != nil {
		return err
	}
	s.updates = append(s.updates, u)
	return nil
}

func (s *Static) apply(u Update) error {
	field := strings.ToLower(u.Field)
	switch u.Entity {
	case EntityPartition:
		for i := range s.partitions {
			if s.partitions[i].Name != u.ID {
				continue
			}
			switch field {
			case "state":
				s.partitions[i].Avail = strings.ToUpper(u.Value)
			case "maxtime":
				d, err := duration.Parse(u.Value)
				if err != nil {
					return err
				}
				s.partitions[i].TimeLimit = d
			default:
				return unsupportedField(u)
			}
			return nil
		}
	case EntityJob:
		for i := range s.jobs {
			if s.jobs[i].ID != u.ID {
				continue
			}
			if field != "timelimit" {
				return unsupportedField(u)
			}
			d, err := duration.Parse(u.Value)
			if err != nil {
				return err
			}
			s.jobs[i].TimeLimit = d
			return nil
		}
	case EntityNode:
		for i := range s.nodes {
			if s.nodes[i].Name != u.ID {
				continue
			}
			if field != "state" {
				return unsupportedField(u)
			}
			s.nodes[i].State = strings.ToLower(u.Value)
			return nil
		}
	case EntityBlock:
		for i := range s.blocks {
			if s.blocks[i].ID != u.ID {
				continue
			}
			if field != "state" {
				return unsupportedField(u)
			}
			s.blocks[i].State = strings.ToUpper(u.Value)
			return nil
		}
	default:
		return fmt.Errorf("%w: entity %s", ErrUnsupported, u.Entity)
	}
	return fmt.Errorf("%w: %s=%s", ErrNotFound, u.Entity, u.ID)
}

func unsupportedField(u Update) error {
	return fmt.Errorf("%w: %s field %s", ErrUnsupported, u.Entity, u.Field)
}
