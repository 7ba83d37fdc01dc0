package dispatcher

import (
	"fmt"

	"github.com/atomicstack/sview/internal/backend"
	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/state"
)

type Result struct {
	PartitionsUpdated bool
	JobsUpdated       bool
	NodesUpdated      bool
	BlocksUpdated     bool
	Err               error
}

// Any reports whether some kind changed.
func (r Result) Any() bool {
	return r.PartitionsUpdated || r.JobsUpdated || r.NodesUpdated || r.BlocksUpdated
}

type Dispatcher struct {
	cache *state.Cache
}

func New(cache *state.Cache) *Dispatcher {
	return &Dispatcher{cache: cache}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		d.cache.SetError(evt.Kind.String(), evt.Err)
		res.Err = evt.Err
		return res
	}
	switch evt.Kind {
	case backend.KindPartitions:
		if items, ok := evt.Data.([]cluster.Partition); ok {
			d.cache.SetPartitions(items)
			res.PartitionsUpdated = true
		}
	case backend.KindJobs:
		if items, ok := evt.Data.([]cluster.Job); ok {
			d.cache.SetJobs(items)
			res.JobsUpdated = true
		}
	case backend.KindNodes:
		if items, ok := evt.Data.([]cluster.Node); ok {
			d.cache.SetNodes(items)
			res.NodesUpdated = true
		}
	case backend.KindBlocks:
		if items, ok := evt.Data.([]cluster.Block); ok {
			d.cache.SetBlocks(items)
			res.BlocksUpdated = true
		}
	}
	if !res.Any() {
		res.Err = fmt.Errorf("unexpected %s payload %T", evt.Kind, evt.Data)
	}
	return res
}
