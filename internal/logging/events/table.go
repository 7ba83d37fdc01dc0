package events

import "github.com/atomicstack/sview/internal/logging"

type TableTracer struct{}

var Table = TableTracer{}

func (TableTracer) UnknownType(column int, name, typ string) {
	logging.Diagnostic("unknown column type", "column", column, "name", name, "type", typ)
}

func (TableTracer) Sort(column int, descending bool) {
	logging.Trace("table.sort", map[string]interface{}{"column": column, "descending": descending})
}

func (TableTracer) Pruned(column, removed int) {
	if removed == 0 {
		return
	}
	logging.Trace("table.prune", map[string]interface{}{"column": column, "removed": removed})
}

func (TableTracer) EditBegin(column int, name string) {
	logging.Trace("table.edit-begin", map[string]interface{}{"column": column, "name": name})
}

func (TableTracer) EditCommit(column int, value string, err error) {
	payload := map[string]interface{}{"column": column, "value": value}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("table.edit-commit", payload)
}

func (TableTracer) EditCancel(column int) {
	logging.Trace("table.edit-cancel", map[string]interface{}{"column": column})
}

func (TableTracer) Rebuild(columns int) {
	logging.Trace("table.rebuild", map[string]interface{}{"columns": columns})
}
