package events

import "github.com/atomicstack/sview/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(popups int) {
	logging.Trace("app.stop", map[string]interface{}{"popups": popups})
}
