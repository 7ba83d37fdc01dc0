// Package command runs menu actions for the UI and traces their outcome.
package command

import (
	"fmt"

	"github.com/atomicstack/sview/internal/logging"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler menu.Action
	Item    menu.Item
}

// Bus coordinates the execution of menu actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute runs the handler on the calling goroutine, since actions update
// descriptors the UI owns, and wraps the command it returns so the result
// message is traced.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Stage("queue", req.ID, req.Label)
	if req.Handler == nil {
		events.Command.Stage("skip", req.ID, req.Label)
		return nil
	}
	cmd := req.Handler(req.Item)
	if cmd == nil {
		events.Command.Stage("noop", req.ID, req.Label)
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		if res, ok := msg.(menu.ActionResult); ok && res.Err != nil {
			logging.Diagnostic("menu action failed", "id", req.ID, "label", req.Label, "error", res.Err.Error())
		}
		return msg
	}
}
