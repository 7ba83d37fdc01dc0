package ui

import (
	"fmt"

	"github.com/atomicstack/sview/internal/backend"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	if m.edit != nil {
		m.deferEvent(eventMsg.event)
	} else {
		m.applyBackendEvent(eventMsg.event)
	}
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// deferEvent queues evt until the edit session ends. Only the newest event
// of each kind is kept.
func (m *Model) deferEvent(evt backend.Event) {
	for i, queued := range m.deferred {
		if queued.Kind == evt.Kind {
			m.deferred[i] = evt
			events.UI.EventDeferred(evt.Kind.String(), len(m.deferred))
			return
		}
	}
	m.deferred = append(m.deferred, evt)
	events.UI.EventDeferred(evt.Kind.String(), len(m.deferred))
}

// Deferred returns how many backend events wait for the edit session to end.
func (m *Model) Deferred() int {
	return len(m.deferred)
}

func (m *Model) flushDeferred() {
	queued := m.deferred
	m.deferred = nil
	for _, evt := range queued {
		m.applyBackendEvent(evt)
	}
	m.refreshStale()
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	m.backendState[evt.Kind] = evt.Err
	if m.dispatcher != nil {
		if res := m.dispatcher.Handle(evt); res.Err != nil && evt.Err == nil {
			m.backendState[evt.Kind] = res.Err
		}
	}
	if err := m.backendState[evt.Kind]; err != nil {
		m.backendLastErr = fmt.Sprintf("%s: %v", evt.Kind, err)
		return
	}
	m.refreshPage(m.pageFor(kindCategory(evt.Kind)))
	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}

func kindCategory(k backend.Kind) display.Category {
	switch k {
	case backend.KindPartitions:
		return display.Partition
	case backend.KindJobs:
		return display.Job
	case backend.KindNodes:
		return display.Node
	case backend.KindBlocks:
		return display.Block
	}
	return display.None
}
