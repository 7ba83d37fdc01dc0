package cluster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/sview/internal/format/duration"
	"github.com/atomicstack/sview/internal/logging/events"
)

const (
	partitionFormat = "%P|%a|%l|%D|%t|%N"
	nodeFormat      = "%N|%t|%P|%c|%m"
	jobFormat       = "%i|%j|%u|%T|%P|%M|%l|%D|%N"
)

// Runner runs one command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args []string) (string, error)
}

// CommandRunner runs commands as subprocesses, each bounded by Timeout.
type CommandRunner struct {
	Timeout time.Duration
}

func (c CommandRunner) Run(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("empty command")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s timed out after %s: %w", args[0], c.Timeout, ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Exec reads cluster state from sinfo, squeue and scontrol.
type Exec struct {
	runner Runner
}

// NewExec returns an Exec that runs commands through runner.
func NewExec(runner Runner) *Exec {
	return &Exec{runner: runner}
}

func (e *Exec) run(ctx context.Context, args ...string) (string, error) {
	out, err := e.runner.Run(ctx, args)
	events.Backend.Command(args, err)
	return out, err
}

func (e *Exec) Partitions(ctx context.Context) ([]Partition, error) {
	out, err := e.run(ctx, "sinfo", "-h", "-a", "-o", partitionFormat)
	if err != nil {
		return nil, err
	}
	return ParsePartitions(out), nil
}

func (e *Exec) Nodes(ctx context.Context) ([]Node, error) {
	out, err := e.run(ctx, "sinfo", "-h", "-N", "-o", nodeFormat)
	if err != nil {
		return nil, err
	}
	return ParseNodes(out), nil
}

func (e *Exec) Jobs(ctx context.Context) ([]Job, error) {
	out, err := e.run(ctx, "squeue", "-h", "-a", "-o", jobFormat)
	if err != nil {
		return nil, err
	}
	return ParseJobs(out), nil
}

func (e *Exec) Blocks(ctx context.Context) ([]Block, error) {
	out, err := e.run(ctx, "scontrol", "show", "block", "-o")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return ParseBlocks(out), nil
}

// Update runs scontrol update for u.
func (e *Exec) Update(ctx context.Context, u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := e.run(ctx, append([]string{"scontrol"}, u.Args()...)...)
	events.Backend.Update(string(u.Entity), u.ID, u.Field, u.Value, err)
	return err
}

func splitFields(line string, want int) ([]string, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}
	parts := strings.Split(line, "|")
	if len(parts) < want {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func lines(output string) []string {
	return strings.Split(strings.TrimSpace(output), "\n")
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseTime(s string) time.Duration {
	d, err := duration.Parse(s)
	if err != nil {
		return 0
	}
	return d
}

// ParsePartitions reads sinfo partition lines, one per partition and node
// state, into partitions in first-seen order.
func ParsePartitions(output string) []Partition {
	var parts []Partition
	index := make(map[string]int)
	for _, line := range lines(output) {
		f, ok := splitFields(line, 6)
		if !ok {
			continue
		}
		name := f[0]
		isDefault := strings.HasSuffix(name, "*")
		name = strings.TrimSuffix(name, "*")
		i, seen := index[name]
		if !seen {
			i = len(parts)
			index[name] = i
			parts = append(parts, Partition{
				Name:      name,
				Avail:     strings.ToUpper(f[1]),
				TimeLimit: parseTime(f[2]),
			})
		}
		if isDefault {
			parts[i].Default = true
		}
		parts[i].Groups = append(parts[i].Groups, NodeGroup{
			State:    f[4],
			Count:    atoi(f[3]),
			NodeList: f[5],
		})
	}
	return parts
}

// ParseNodes reads sinfo node lines, merging the per-partition duplicates.
func ParseNodes(output string) []Node {
	var nodes []Node
	index := make(map[string]int)
	for _, line := range lines(output) {
		f, ok := splitFields(line, 5)
		if !ok {
			continue
		}
		partition := strings.TrimSuffix(f[2], "*")
		if i, seen := index[f[0]]; seen {
			nodes[i].Partitions = append(nodes[i].Partitions, partition)
			continue
		}
		index[f[0]] = len(nodes)
		nodes = append(nodes, Node{
			Name:       f[0],
			State:      f[1],
			CPUs:       atoi(f[3]),
			MemoryMB:   atoi(f[4]),
			Partitions: []string{partition},
		})
	}
	return nodes
}

// ParseJobs reads squeue lines.
func ParseJobs(output string) []Job {
	var jobs []Job
	for _, line := range lines(output) {
		f, ok := splitFields(line, 8)
		if !ok {
			continue
		}
		job := Job{
			ID:        f[0],
			Name:      f[1],
			User:      f[2],
			State:     f[3],
			Partition: f[4],
			Elapsed:   parseTime(f[5]),
			TimeLimit: parseTime(f[6]),
			NodeCount: atoi(f[7]),
		}
		if len(f) > 8 {
			job.NodeList = f[8]
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ParseBlocks reads one-line scontrol block records of Key=Value pairs.
func ParseBlocks(output string) []Block {
	var blocks []Block
	for _, line := range lines(output) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var b Block
		for _, field := range fields {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			switch key {
			case "BlockID", "BlockName":
				b.ID = value
			case "State", "BlockState":
				b.State = value
			case "User", "OwnerName":
				b.User = value
			case "ConnType", "ConnectionType":
				b.ConnType = value
			case "NodeList", "MidplaneList", "MpNodes", "BasePartitions":
				b.NodeList = value
			}
		}
		if b.ID != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
