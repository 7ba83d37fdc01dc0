package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/sview/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultPollInterval, cfg.App.PollInterval)
	assert.Equal(t, app.DefaultRefreshInterval, cfg.App.RefreshInterval)
	assert.Equal(t, app.DefaultCommandTimeout, cfg.App.CommandTimeout)
	assert.True(t, cfg.App.Mouse)
	assert.False(t, cfg.App.Admin)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.File)
	require.NoError(t, Validate(cfg))
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	env := []string{"SVIEW_WIDTH=100", "SVIEW_ADMIN=true", "SVIEW_POLL_INTERVAL=2s"}
	cfg, err := LoadArgs([]string{"--width", "80", "--poll-interval=1s"}, env)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.App.Width)
	assert.Equal(t, time.Second, cfg.App.PollInterval)
	assert.True(t, cfg.App.Admin)
	assert.True(t, cfg.Features.Admin)
	assert.Equal(t, "80", cfg.Flags["width"])
	assert.Equal(t, []string{"--width", "80", "--poll-interval=1s"}, cfg.Args)
}

func TestInvalidEnvironmentFallsBack(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"SVIEW_HEIGHT=tall", "SVIEW_DEMO=maybe", "SVIEW_COMMAND_TIMEOUT=soon"})
	require.NoError(t, err)
	assert.Zero(t, cfg.App.Height)
	assert.False(t, cfg.App.Demo)
	assert.Equal(t, app.DefaultCommandTimeout, cfg.App.CommandTimeout)
}

func TestFileFillsUnsetValues(t *testing.T) {
	path := writeFile(t, `
poll_interval: 30s
refresh_interval: 2s
admin: true
mouse: false
page: nodes
width: 120
log_level: debug
hidden:
  jobs: [NodeList, Time]
`)
	cfg, err := LoadArgs([]string{"--config", path, "--width", "90"}, []string{"SVIEW_REFRESH_INTERVAL=3s"})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 30*time.Second, cfg.App.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.App.RefreshInterval, "environment beats the file")
	assert.Equal(t, 90, cfg.App.Width, "flag beats the file")
	assert.True(t, cfg.App.Admin)
	assert.False(t, cfg.App.Mouse)
	assert.Equal(t, "nodes", cfg.App.Page)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, map[string][]string{"jobs": {"NodeList", "Time"}}, cfg.App.Hidden)
	require.NoError(t, Validate(cfg))
}

func TestConfigPathFromEnvironment(t *testing.T) {
	path := writeFile(t, "demo: true\n")
	cfg, err := LoadArgs(nil, []string{"SVIEW_CONFIG=" + path})
	require.NoError(t, err)
	assert.True(t, cfg.App.Demo)
	assert.True(t, cfg.Features.Demo)
}

func TestMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, nil)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultPollInterval, cfg.App.PollInterval)
}

func TestBadFileIsAnError(t *testing.T) {
	_, err := LoadArgs([]string{"--config", writeFile(t, "poll_interval: often\n")}, nil)
	require.ErrorContains(t, err, "parse config")

	_, err = LoadArgs([]string{"--config", writeFile(t, "width: [1, 2]\n")}, nil)
	require.Error(t, err)
}

func TestHiddenFlag(t *testing.T) {
	cfg, err := LoadArgs([]string{"--hidden", "jobs=NodeList,Time", "--hidden", "nodes=MemoryMB"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"jobs":  {"NodeList", "Time"},
		"nodes": {"MemoryMB"},
	}, cfg.App.Hidden)

	cfg, err = LoadArgs(nil, []string{"SVIEW_HIDDEN=partitions=NodeList; jobs=User"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NodeList"}, cfg.App.Hidden["partitions"])
	assert.Equal(t, []string{"User"}, cfg.App.Hidden["jobs"])

	_, err = LoadArgs([]string{"--hidden", "NodeList"}, nil)
	require.Error(t, err)
}

func TestUnknownFlag(t *testing.T) {
	_, err := LoadArgs([]string{"--socket", "x"}, nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := LoadArgs(nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative width", func(c *Config) { c.App.Width = -1 }},
		{"negative height", func(c *Config) { c.App.Height = -4 }},
		{"negative poll interval", func(c *Config) { c.App.PollInterval = -time.Second }},
		{"unknown page", func(c *Config) { c.App.Page = "queues" }},
		{"block page without blocks", func(c *Config) { c.App.Page = "blocks" }},
		{"unknown hidden page", func(c *Config) { c.App.Hidden = map[string][]string{"queues": {"Name"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			require.Error(t, Validate(cfg))
		})
	}

	base.App.Page = "blocks"
	base.App.Blocks = true
	require.NoError(t, Validate(base))
}

func TestYAMLRendersResolvedConfig(t *testing.T) {
	cfg, err := LoadArgs([]string{"--demo", "--page", "jobs"}, nil)
	require.NoError(t, err)
	out, err := YAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "demo: true")
	assert.Contains(t, out, "page: jobs")
	assert.Contains(t, out, "poll_interval: 5s")
	assert.NotContains(t, out, "args")
}
