package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/sview/internal/app"
	"github.com/atomicstack/sview/internal/config"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			PollInterval: 2 * time.Second,
			Width:        80,
			Height:       24,
			Demo:         true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"width":  "80",
			"height": "24",
			"demo":   "true",
		},
		Args: []string{"--demo"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["width"] != "80" {
		t.Fatalf("expected width 80, got %v", flagsValue["width"])
	}
	if flagsValue["demo"] != "true" {
		t.Fatalf("expected demo flag true, got %v", flagsValue["demo"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}
	if payload["version"] != version {
		t.Fatalf("expected version %q, got %v", version, payload["version"])
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	cfgValue, ok := payload["config"].(config.Config)
	if !ok {
		t.Fatalf("expected config in payload")
	}
	if cfgValue.App.PollInterval != cfg.App.PollInterval || cfgValue.App.Width != 80 {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func noRun(app.Config) error { return nil }

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd(nil, noRun)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if out.String() != "sview "+version+"\n" {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	cmd := newRootCmd([]string{"SVIEW_ADMIN=1"}, noRun)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--demo", "--page", "nodes"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"demo: true", "admin: true", "page: nodes"} {
		if !bytes.Contains(out.Bytes(), []byte(want)) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestInvalidConfigExitsWithStatusTwo(t *testing.T) {
	cmd := newRootCmd(nil, noRun)
	cmd.SetArgs([]string{"config", "--width", "-3"})
	err := cmd.Execute()
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Fatalf("expected exit status 2, got %v", err)
	}
}

func TestRootRunsApp(t *testing.T) {
	var got app.Config
	cmd := newRootCmd(nil, func(cfg app.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs([]string{"--demo", "--log-file", t.TempDir() + "/sview.log", "--refresh-interval", "7s"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !got.Demo || got.RefreshInterval != 7*time.Second {
		t.Fatalf("unexpected app config %#v", got)
	}
}
