package events

import "github.com/atomicstack/sview/internal/logging"

type CommandTracer struct{}

type ActionTracer struct{}

var (
	Command = CommandTracer{}
	Action  = ActionTracer{}
)

// Stage records a menu action passing through the command bus: queued,
// skipped for lack of a handler, or finished without a follow-up command.
func (CommandTracer) Stage(stage, id, label string) {
	logging.Trace("command."+stage, map[string]interface{}{"id": id, "label": label})
}

// Result records the message type a follow-up command produced.
func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}

// Outcome records the note or error an action result put on the status line.
func (ActionTracer) Outcome(info string, err error) {
	if err != nil {
		logging.Trace("action.failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if info != "" {
		logging.Trace("action.note", map[string]interface{}{"note": info})
	}
}
