package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atomicstack/sview/internal/app"
	"github.com/atomicstack/sview/internal/config"
	"github.com/atomicstack/sview/internal/logging"
	"github.com/atomicstack/sview/internal/logging/events"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

// exitError carries the process exit status out of cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	cmd := newRootCmd(os.Environ(), app.Run)
	if err := cmd.Execute(); err != nil {
		code := 1
		if exit, ok := err.(*exitError); ok {
			code = exit.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(code)
	}
}

// newRootCmd builds the sview command. run starts the UI and is replaced in
// tests.
func newRootCmd(environ []string, run func(app.Config) error) *cobra.Command {
	root := &cobra.Command{
		Use:           "sview",
		Short:         "Terminal dashboard for a Slurm cluster",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.Register(root.PersistentFlags(), environ)
	resolve := func() (config.Config, error) {
		cfg, err := flags.Resolve(os.Args[1:])
		if err == nil {
			err = config.Validate(cfg)
		}
		if err != nil {
			return config.Config{}, &exitError{code: 2, err: fmt.Errorf("configuration: %w", err)}
		}
		return cfg, nil
	}

	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolve()
		if err != nil {
			return err
		}
		if err := logging.Configure(cfg.Logging.FilePath, cfg.Logging.Level); err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		defer logging.Close()
		logging.SetTraceEnabled(cfg.Logging.Trace)
		traceStartup(cfg)
		if err := run(cfg.App); err != nil {
			logging.Error(err)
			return err
		}
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print sview version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "sview", version)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	})
	return root
}

func printConfig(w io.Writer, cfg config.Config) error {
	out, err := config.YAML(cfg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  cfg,
		"version": version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
