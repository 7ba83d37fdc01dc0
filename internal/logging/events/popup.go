package events

import (
	"time"

	"github.com/atomicstack/sview/internal/logging"
)

type PopupTracer struct{}

var Popup = PopupTracer{}

func (PopupTracer) Open(title, dest string, rowType int) {
	logging.Trace("popup.open", map[string]interface{}{"title": title, "dest": dest, "rowType": rowType})
}

func (PopupTracer) Superseded(title string) {
	logging.Trace("popup.superseded", map[string]interface{}{"title": title})
}

func (PopupTracer) Close(title string) {
	logging.Trace("popup.close", map[string]interface{}{"title": title})
}

func (PopupTracer) Teardown(title, part string) {
	logging.Trace("popup.teardown", map[string]interface{}{"title": title, "part": part})
}

func (PopupTracer) Refresh(title string, elapsed time.Duration, forced bool) {
	logging.Trace("popup.refresh", map[string]interface{}{
		"title":   title,
		"elapsed": elapsed.String(),
		"forced":  forced,
	})
}

// RefreshFailed is always logged, tracing or not, since the rows it leaves
// behind are stale.
func (PopupTracer) RefreshFailed(title string, err error) {
	if err == nil {
		return
	}
	logging.Logger().Error(err, "popup refresh failed", "title", title)
}

func (PopupTracer) WorkerExit(title string) {
	logging.Trace("popup.worker-exit", map[string]interface{}{"title": title})
}

func (PopupTracer) Rejected(title string, err error) {
	logging.Diagnostic("popup not opened", "title", title, "error", err.Error())
}
