// Package app wires the cluster source, state cache, popup registry and UI
// together and runs the Bubble Tea program.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/backend"
	"github.com/atomicstack/sview/internal/cluster"
	"github.com/atomicstack/sview/internal/data/dispatcher"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/atomicstack/sview/internal/pages"
	"github.com/atomicstack/sview/internal/popup"
	"github.com/atomicstack/sview/internal/state"
	"github.com/atomicstack/sview/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultRefreshInterval = popup.DefaultInterval
	DefaultCommandTimeout  = 10 * time.Second
)

// Config describes user-provided application options.
type Config struct {
	PollInterval    time.Duration       `yaml:"poll_interval"`
	RefreshInterval time.Duration       `yaml:"refresh_interval"`
	CommandTimeout  time.Duration       `yaml:"command_timeout"`
	Admin           bool                `yaml:"admin"`
	Demo            bool                `yaml:"demo"`
	Blocks          bool                `yaml:"blocks"`
	Mouse           bool                `yaml:"mouse"`
	Page            string              `yaml:"page"`
	Width           int                 `yaml:"width"`
	Height          int                 `yaml:"height"`
	Hidden          map[string][]string `yaml:"hidden,omitempty"`
}

// Stack is everything Run wires together before the program starts.
type Stack struct {
	Lock     *sync.Mutex
	Cache    *state.Cache
	Watcher  *backend.Watcher
	Registry *popup.Registry
	Book     *pages.Book
	Model    *ui.Model
}

// Build creates the collaborators for cfg. The watcher starts polling
// immediately; Close stops it.
func Build(cfg Config) (*Stack, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	var source cluster.Source
	var admin cluster.Admin
	if cfg.Demo {
		demo := cluster.Demo()
		source, admin = demo, demo
	} else {
		exec := cluster.NewExec(cluster.CommandRunner{Timeout: cfg.CommandTimeout})
		source, admin = exec, exec
	}
	page := display.None
	if cfg.Page != "" {
		c, err := display.ParseCategory(cfg.Page)
		if err != nil {
			return nil, err
		}
		page = c
	}

	s := &Stack{Lock: &sync.Mutex{}, Cache: state.NewCache()}
	s.Registry = popup.NewRegistry(s.Lock,
		popup.WithInterval(cfg.RefreshInterval),
		popup.WithRefreshTimeout(cfg.CommandTimeout),
	)
	s.Book = pages.New(s.Cache, admin, pages.Options{
		Admin:         cfg.Admin,
		Blocks:        cfg.Blocks,
		CommitTimeout: cfg.CommandTimeout,
		Hidden:        cfg.Hidden,
	})
	s.Watcher = backend.NewWatcher(source, cfg.PollInterval,
		backend.WithBlocks(cfg.Blocks),
		backend.WithTimeout(cfg.CommandTimeout),
	)
	s.Book.OnCommit(func() {
		s.Watcher.Poke()
		s.Registry.ForceRefresh()
	})
	model, err := ui.NewModel(ui.Options{
		Book:       s.Book,
		Popups:     s.Registry,
		Lock:       s.Lock,
		Watcher:    s.Watcher,
		Dispatcher: dispatcher.New(s.Cache),
		Page:       page,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Mouse:      cfg.Mouse,
	})
	if err != nil {
		s.Watcher.Stop()
		s.Registry.Shutdown()
		return nil, fmt.Errorf("build ui: %w", err)
	}
	s.Model = model
	return s, nil
}

// Close ends any edit, destroys every popup and stops polling.
func (s *Stack) Close() {
	popups := s.Registry.Len()
	s.Model.Close()
	s.Registry.Shutdown()
	s.Watcher.Stop()
	events.App.Stop(popups)
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	s, err := Build(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(s.Model, opts...)
	s.Registry.SetNotify(ui.NotifyPopups(program.Send))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
