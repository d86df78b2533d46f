package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/fs"
	"github.com/fwojciec/deadcodehunter/toml"
)

// Overrides carries command-line values. A field applies only if Set
// reports its flag as given.
type Overrides struct {
	ServerCommand string
	ServerArgs    []string
	Extensions    []string
	MaxFiles      int
	NoWatch       bool
	Editor        string
	LogFile       string
	LogLevel      string

	Set func(flag string) bool
}

// ResolveConfig layers the config file at path and then ov over the
// defaults.
func ResolveConfig(path string, ov Overrides) (deadcode.Config, error) {
	cfg, err := toml.LoadConfig(path, deadcode.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	set := ov.Set
	if set == nil {
		set = func(string) bool { return false }
	}
	if set("server") {
		cfg.ServerCommand = ov.ServerCommand
		cfg.ServerArgs = nil
	}
	if set("server-arg") {
		cfg.ServerArgs = ov.ServerArgs
	}
	if set("ext") {
		cfg.Extensions = ov.Extensions
	}
	if set("max-files") {
		cfg.MaxFiles = ov.MaxFiles
	}
	if set("no-watch") {
		cfg.Watch = !ov.NoWatch
	}
	if set("editor") {
		cfg.Editor = ov.Editor
	}
	if set("log-file") {
		cfg.LogFile = ov.LogFile
	}
	if set("log-level") {
		cfg.LogLevel = ov.LogLevel
	}
	return cfg, nil
}

// openLogger returns a text logger writing to the configured file, the
// default state directory when none is set, or stderr for "-".
func openLogger(cfg deadcode.Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFile == "-" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
	}
	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(fs.DefaultStateDir(), "deadcodehunter.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}
