package events

import "github.com/atomicstack/sview/internal/logging"

type BackendTracer struct{}

var Backend = BackendTracer{}

func (BackendTracer) Poll(kind string, err error) {
	payload := map[string]interface{}{"kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("backend.poll", payload)
}

func (BackendTracer) Command(args []string, err error) {
	payload := map[string]interface{}{"args": args}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("backend.command", payload)
}

func (BackendTracer) Update(entity, id, field, value string, err error) {
	payload := map[string]interface{}{"entity": entity, "id": id, "field": field, "value": value}
	if err != nil {
		payload["error"] = err.Error()
		logging.Logger().Error(err, "admin update failed", "entity", entity, "id", id, "field", field)
	}
	logging.Trace("backend.update", payload)
}
