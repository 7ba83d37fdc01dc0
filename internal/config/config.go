// Package config resolves sview's runtime options from flags, SVIEW_*
// environment variables and an optional YAML file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/sview/internal/app"
	"github.com/atomicstack/sview/internal/display"
	"github.com/atomicstack/sview/internal/logging"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config        `yaml:"app"`
	Logging  Logging           `yaml:"logging"`
	Features Features          `yaml:"features"`
	File     string            `yaml:"file,omitempty"`
	Flags    map[string]string `yaml:"-"`
	Args     []string          `yaml:"-"`
}

type Logging struct {
	FilePath string `yaml:"log_file"`
	Level    string `yaml:"log_level"`
	Trace    bool   `yaml:"trace"`
}

type Features struct {
	Admin bool `yaml:"admin"`
	Demo  bool `yaml:"demo"`
}

const (
	envConfig          = "SVIEW_CONFIG"
	envPollInterval    = "SVIEW_POLL_INTERVAL"
	envRefreshInterval = "SVIEW_REFRESH_INTERVAL"
	envCommandTimeout  = "SVIEW_COMMAND_TIMEOUT"
	envAdmin           = "SVIEW_ADMIN"
	envDemo            = "SVIEW_DEMO"
	envBlocks          = "SVIEW_BLOCKS"
	envMouse           = "SVIEW_MOUSE"
	envPage            = "SVIEW_PAGE"
	envWidth           = "SVIEW_WIDTH"
	envHeight          = "SVIEW_HEIGHT"
	envLogFile         = "SVIEW_LOG_FILE"
	envLogLevel        = "SVIEW_LOG_LEVEL"
	envTrace           = "SVIEW_TRACE"
	envHidden          = "SVIEW_HIDDEN"
)

// flag name to environment variable.
var envFor = map[string]string{
	"config":           envConfig,
	"poll-interval":    envPollInterval,
	"refresh-interval": envRefreshInterval,
	"command-timeout":  envCommandTimeout,
	"admin":            envAdmin,
	"demo":             envDemo,
	"blocks":           envBlocks,
	"mouse":            envMouse,
	"page":             envPage,
	"width":            envWidth,
	"height":           envHeight,
	"log-file":         envLogFile,
	"log-level":        envLogLevel,
	"trace":            envTrace,
	"hidden":           envHidden,
}

// Flags holds the values bound to a FlagSet until Resolve reads them.
type Flags struct {
	set *pflag.FlagSet
	env map[string]string

	config          *string
	pollInterval    *time.Duration
	refreshInterval *time.Duration
	commandTimeout  *time.Duration
	admin           *bool
	demo            *bool
	blocks          *bool
	mouse           *bool
	page            *string
	width           *int
	height          *int
	logFile         *string
	logLevel        *string
	trace           *bool
	hidden          *[]string
}

// Register defines every flag on set, each defaulting from its SVIEW_*
// environment variable.
func Register(set *pflag.FlagSet, environ []string) *Flags {
	env := parseEnv(environ)
	return &Flags{
		set:             set,
		env:             env,
		config:          set.String("config", envOrDefault(env, envConfig, ""), "path to a YAML config file"),
		pollInterval:    set.Duration("poll-interval", envOrDuration(env, envPollInterval, app.DefaultPollInterval), "how often the cluster is polled"),
		refreshInterval: set.Duration("refresh-interval", envOrDuration(env, envRefreshInterval, app.DefaultRefreshInterval), "how often open popups refresh"),
		commandTimeout:  set.Duration("command-timeout", envOrDuration(env, envCommandTimeout, app.DefaultCommandTimeout), "timeout for each Slurm command"),
		admin:           set.Bool("admin", envOrBool(env, envAdmin, false), "allow editing cells with scontrol update"),
		demo:            set.Bool("demo", envOrBool(env, envDemo, false), "show a built-in demo cluster instead of calling Slurm"),
		blocks:          set.Bool("blocks", envOrBool(env, envBlocks, false), "show the BlueGene block page"),
		mouse:           set.Bool("mouse", envOrBool(env, envMouse, true), "enable mouse input"),
		page:            set.String("page", envOrDefault(env, envPage, ""), "page shown at start (jobs, partitions, nodes, blocks)"),
		width:           set.Int("width", envOrInt(env, envWidth, 0), "viewport width in cells (0 uses terminal width)"),
		height:          set.Int("height", envOrInt(env, envHeight, 0), "viewport height in rows (0 uses terminal height)"),
		logFile:         set.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file"),
		logLevel:        set.String("log-level", envOrDefault(env, envLogLevel, "info"), "log level (debug, info, warn, error)"),
		trace:           set.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging"),
		hidden:          set.StringArray("hidden", envOrList(env, envHidden), "columns hidden at start, as page=Col1,Col2"),
	}
}

// explicit reports whether name was given on the command line or through
// the environment.
func (f *Flags) explicit(name string) bool {
	if f.set.Changed(name) {
		return true
	}
	v, ok := f.env[envFor[name]]
	return ok && strings.TrimSpace(v) != ""
}

// Resolve builds the configuration from the parsed flags, filling anything
// neither a flag nor the environment set from the config file.
func (f *Flags) Resolve(args []string) (Config, error) {
	hidden, err := parseHidden(*f.hidden)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		App: app.Config{
			PollInterval:    *f.pollInterval,
			RefreshInterval: *f.refreshInterval,
			CommandTimeout:  *f.commandTimeout,
			Admin:           *f.admin,
			Demo:            *f.demo,
			Blocks:          *f.blocks,
			Mouse:           *f.mouse,
			Page:            *f.page,
			Width:           *f.width,
			Height:          *f.height,
			Hidden:          hidden,
		},
		Logging: Logging{
			FilePath: *f.logFile,
			Level:    *f.logLevel,
			Trace:    *f.trace,
		},
		File: *f.config,
		Args: append([]string(nil), args...),
	}
	if cfg.File != "" {
		file, err := readFile(cfg.File)
		if err != nil {
			return Config{}, err
		}
		if file != nil {
			f.merge(&cfg, file)
		}
	}
	cfg.Features = Features{Admin: cfg.App.Admin, Demo: cfg.App.Demo}
	cfg.Flags = flagValues(cfg)
	return cfg, nil
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	set := pflag.NewFlagSet("sview", pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	flags := Register(set, environ)
	if err := set.Parse(args); err != nil {
		return Config{}, err
	}
	return flags.Resolve(args)
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err == nil {
		err = Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects negative sizes and intervals and unknown page names.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	for name, d := range map[string]time.Duration{
		"poll_interval":    a.PollInterval,
		"refresh_interval": a.RefreshInterval,
		"command_timeout":  a.CommandTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be >= 0 (got %s)", name, d)
		}
	}
	if a.Page != "" {
		c, err := display.ParseCategory(a.Page)
		if err != nil {
			return err
		}
		if c == display.Block && !a.Blocks {
			return fmt.Errorf("page %q needs --blocks", a.Page)
		}
	}
	for page := range a.Hidden {
		if _, err := display.ParseCategory(page); err != nil {
			return fmt.Errorf("hidden: %w", err)
		}
	}
	return nil
}

// YAML renders cfg the way the config subcommand prints it.
func YAML(cfg Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func flagValues(cfg Config) map[string]string {
	a := cfg.App
	hidden := make([]string, 0, len(a.Hidden))
	for page, cols := range a.Hidden {
		hidden = append(hidden, page+"="+strings.Join(cols, ","))
	}
	return map[string]string{
		"config":          cfg.File,
		"pollInterval":    a.PollInterval.String(),
		"refreshInterval": a.RefreshInterval.String(),
		"commandTimeout":  a.CommandTimeout.String(),
		"admin":           strconv.FormatBool(a.Admin),
		"demo":            strconv.FormatBool(a.Demo),
		"blocks":          strconv.FormatBool(a.Blocks),
		"mouse":           strconv.FormatBool(a.Mouse),
		"page":            a.Page,
		"width":           strconv.Itoa(a.Width),
		"height":          strconv.Itoa(a.Height),
		"logFile":         cfg.Logging.FilePath,
		"logLevel":        cfg.Logging.Level,
		"trace":           strconv.FormatBool(cfg.Logging.Trace),
		"hidden":          strings.Join(hidden, ";"),
	}
}

// parseHidden reads page=Col1,Col2 entries.
func parseHidden(entries []string) (map[string][]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(entries))
	for _, entry := range entries {
		page, cols, ok := strings.Cut(entry, "=")
		page = strings.TrimSpace(page)
		if !ok || page == "" {
			return nil, fmt.Errorf("hidden: want page=Col1,Col2, got %q", entry)
		}
		for _, col := range strings.Split(cols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				out[page] = append(out[page], col)
			}
		}
	}
	return out, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// envOrList splits a semicolon separated variable.
func envOrList(env map[string]string, key string) []string {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Duration reads Go duration strings such as "1m30s" from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// file is the YAML config file. Unset keys stay nil.
type file struct {
	PollInterval    *Duration           `yaml:"poll_interval"`
	RefreshInterval *Duration           `yaml:"refresh_interval"`
	CommandTimeout  *Duration           `yaml:"command_timeout"`
	Admin           *bool               `yaml:"admin"`
	Demo            *bool               `yaml:"demo"`
	Blocks          *bool               `yaml:"blocks"`
	Mouse           *bool               `yaml:"mouse"`
	Page            *string             `yaml:"page"`
	Width           *int                `yaml:"width"`
	Height          *int                `yaml:"height"`
	LogFile         *string             `yaml:"log_file"`
	LogLevel        *string             `yaml:"log_level"`
	Trace           *bool               `yaml:"trace"`
	Hidden          map[string][]string `yaml:"hidden"`
}

// readFile loads path. A missing file yields nil and no error.
func readFile(path string) (*file, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug("config file not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}

func (f *Flags) merge(cfg *Config, file *file) {
	durations := []struct {
		name string
		src  *Duration
		dst  *time.Duration
	}{
		{"poll-interval", file.PollInterval, &cfg.App.PollInterval},
		{"refresh-interval", file.RefreshInterval, &cfg.App.RefreshInterval},
		{"command-timeout", file.CommandTimeout, &cfg.App.CommandTimeout},
	}
	for _, d := range durations {
		if d.src != nil && !f.explicit(d.name) {
			*d.dst = time.Duration(*d.src)
		}
	}
	bools := []struct {
		name string
		src  *bool
		dst  *bool
	}{
		{"admin", file.Admin, &cfg.App.Admin},
		{"demo", file.Demo, &cfg.App.Demo},
		{"blocks", file.Blocks, &cfg.App.Blocks},
		{"mouse", file.Mouse, &cfg.App.Mouse},
		{"trace", file.Trace, &cfg.Logging.Trace},
	}
	for _, b := range bools {
		if b.src != nil && !f.explicit(b.name) {
			*b.dst = *b.src
		}
	}
	strs := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"page", file.Page, &cfg.App.Page},
		{"log-file", file.LogFile, &cfg.Logging.FilePath},
		{"log-level", file.LogLevel, &cfg.Logging.Level},
	}
	for _, s := range strs {
		if s.src != nil && !f.explicit(s.name) {
			*s.dst = *s.src
		}
	}
	ints := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"width", file.Width, &cfg.App.Width},
		{"height", file.Height, &cfg.App.Height},
	}
	for _, i := range ints {
		if i.src != nil && !f.explicit(i.name) {
			*i.dst = *i.src
		}
	}
	if len(file.Hidden) > 0 && !f.explicit("hidden") {
		cfg.App.Hidden = file.Hidden
	}
}
