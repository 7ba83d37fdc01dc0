package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/menu"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"
)

const clipboardLimit = 100 * 1024

type noteExpiredMsg struct {
	seq int
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.ActionResult)
	if !ok {
		return nil
	}
	if result.Err != nil {
		return m.fail(result.Err)
	}
	events.Action.Outcome(result.Info, nil)
	if result.Info == "" {
		return nil
	}
	return m.note(result.Info)
}

// note shows text in the status line until the note TTL passes or another
// note replaces it.
func (m *Model) note(text string) tea.Cmd {
	m.infoMsg = text
	m.errMsg = ""
	return m.expireNote()
}

func (m *Model) fail(err error) tea.Cmd {
	events.Action.Outcome("", err)
	m.errMsg = err.Error()
	m.infoMsg = ""
	return m.expireNote()
}

func (m *Model) expireNote() tea.Cmd {
	m.noteSeq++
	seq := m.noteSeq
	return tea.Tick(m.noteTTL, func(time.Time) tea.Msg {
		return noteExpiredMsg{seq: seq}
	})
}

func (m *Model) handleNoteExpiredMsg(msg tea.Msg) tea.Cmd {
	expired, ok := msg.(noteExpiredMsg)
	if !ok || expired.seq != m.noteSeq {
		return nil
	}
	m.infoMsg = ""
	m.errMsg = ""
	return nil
}

func (m *Model) copyCmd(column, value string) tea.Cmd {
	w := m.clipboard
	return func() tea.Msg {
		seq := osc52.New(value).Limit(clipboardLimit)
		term := strings.ToLower(os.Getenv("TERM"))
		if os.Getenv("TMUX") != "" || strings.HasPrefix(term, "tmux") {
			seq = seq.Tmux()
		} else if strings.HasPrefix(term, "screen") {
			seq = seq.Screen()
		}
		if _, err := seq.WriteTo(w); err != nil {
			return menu.ActionResult{Err: fmt.Errorf("copy %s: %w", column, err)}
		}
		events.UI.Copy(column, len(value))
		return menu.ActionResult{Info: fmt.Sprintf("copied %s %q", column, value)}
	}
}
