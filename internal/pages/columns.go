package pages

import (
	"github.com/atomicstack/sview/internal/display"
)

// Partition columns.
const (
	PartName = iota
	PartAvail
	PartTimeLimit
	PartNodes
	PartState
	PartNodeList
	PartUpdated
)

// Job columns.
const (
	JobID = iota
	JobPartition
	JobName
	JobUser
	JobState
	JobTime
	JobTimeLimit
	JobNodes
	JobNodeList
	JobUpdated
)

// Node columns.
const (
	NodeName = iota
	NodeState
	NodeCPUs
	NodeMemory
	NodePartitions
	NodeUpdated
)

// Block columns.
const (
	BlockID = iota
	BlockState
	BlockUser
	BlockConnType
	BlockNodeList
	BlockUpdated
)

var (
	partitionAvailChoices = []string{"UP", "DOWN", "DRAIN", "INACTIVE"}
	nodeStateChoices      = []string{"DRAIN", "RESUME", "DOWN", "IDLE", "FAIL", "UNDRAIN"}
	blockStateChoices     = []string{"FREE", "ERROR", "RECREATE", "REMOVE", "RESUME"}
)

func text(id int, name string) display.Descriptor {
	return display.Descriptor{ID: id, Name: name, Type: display.TypeText, Visible: true}
}

func integer(id int, name string) display.Descriptor {
	return display.Descriptor{ID: id, Name: name, Type: display.TypeInt, Visible: true}
}

func live(id int) display.Descriptor {
	return display.Descriptor{ID: id, Type: display.TypeInt}
}

func partitionColumns() display.Descriptors {
	avail := text(PartAvail, "Avail")
	avail.Edit = display.Editable
	limit := text(PartTimeLimit, "TimeLimit")
	limit.Edit = display.Editable
	return display.Descriptors{
		text(PartName, "Partition"),
		avail,
		limit,
		integer(PartNodes, "Nodes"),
		text(PartState, "State"),
		text(PartNodeList, "NodeList"),
		live(PartUpdated),
		display.Sentinel(),
	}
}

func jobColumns() display.Descriptors {
	limit := text(JobTimeLimit, "TimeLimit")
	limit.Edit = display.Editable
	return display.Descriptors{
		text(JobID, "JobID"),
		text(JobPartition, "Partition"),
		text(JobName, "Name"),
		text(JobUser, "User"),
		text(JobState, "State"),
		text(JobTime, "Time"),
		limit,
		integer(JobNodes, "Nodes"),
		text(JobNodeList, "NodeList"),
		live(JobUpdated),
		display.Sentinel(),
	}
}

func nodeColumns() display.Descriptors {
	st := text(NodeState, "State")
	st.Edit = display.ComboEntry
	return display.Descriptors{
		text(NodeName, "Name"),
		st,
		integer(NodeCPUs, "CPUs"),
		integer(NodeMemory, "MemoryMB"),
		text(NodePartitions, "Partitions"),
		live(NodeUpdated),
		display.Sentinel(),
	}
}

func blockColumns() display.Descriptors {
	st := text(BlockState, "State")
	st.Edit = display.Editable
	return display.Descriptors{
		text(BlockID, "BlockID"),
		st,
		text(BlockUser, "User"),
		text(BlockConnType, "ConnType"),
		text(BlockNodeList, "NodeList"),
		live(BlockUpdated),
		display.Sentinel(),
	}
}

// choices returns the model for an editable column of category c.
func choices(c display.Category) display.ModelFactory {
	return func(id int) []string {
		switch {
		case c == display.Partition && id == PartAvail:
			return partitionAvailChoices
		case c == display.Node && id == NodeState:
			return nodeStateChoices
		case c == display.Block && id == BlockState:
			return blockStateChoices
		}
		return nil
	}
}

// keyColumn is the column rows are upserted by and identified with.
func keyColumn(c display.Category) int {
	switch c {
	case display.Job:
		return JobID
	case display.Node:
		return NodeName
	case display.Block:
		return BlockID
	default:
		return PartName
	}
}

// liveColumn is the hidden still-present mark of category c.
func liveColumn(c display.Category) int {
	switch c {
	case display.Job:
		return JobUpdated
	case display.Node:
		return NodeUpdated
	case display.Block:
		return BlockUpdated
	default:
		return PartUpdated
	}
}
