package events

import "github.com/atomicstack/sview/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
)

// MenuEnter records an activated menu item and the filter it was picked
// through.
func (UITracer) MenuEnter(menuID, itemID, label, filter string) {
	payload := map[string]interface{}{"menu": menuID, "item": itemID, "label": label}
	if filter != "" {
		payload["filter"] = filter
	}
	logging.Trace("ui.menu-enter", payload)
}

func (UITracer) PageSwitch(page string) {
	logging.Trace("ui.page", map[string]interface{}{"page": page})
}

func (UITracer) Focus(title string) {
	logging.Trace("ui.focus", map[string]interface{}{"popup": title})
}

// EventDeferred records a backend event held back by an open edit.
func (UITracer) EventDeferred(kind string, pending int) {
	logging.Trace("ui.deferred", map[string]interface{}{"kind": kind, "held": pending})
}

func (UITracer) Copy(column string, size int) {
	logging.Trace("ui.copy", map[string]interface{}{"column": column, "bytes": size})
}

func (FilterTracer) Set(scope, filter string) {
	logging.Trace("filter.set", map[string]interface{}{"scope": scope, "query": filter})
}

func (FilterTracer) Cleared(scope string) {
	logging.Trace("filter.cleared", map[string]interface{}{"scope": scope})
}
