// Package toml loads deadcodehunter configuration files.
package toml

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	deadcode "github.com/fwojciec/deadcodehunter"
)

type fileConfig struct {
	Server struct {
		Command *string  `toml:"command"`
		Args    []string `toml:"args"`
	} `toml:"server"`
	Workspace struct {
		Extensions []string `toml:"extensions"`
		MaxFiles   *int     `toml:"max_files"`
		Watch      *bool    `toml:"watch"`
	} `toml:"workspace"`
	Editor struct {
		Command *string `toml:"command"`
	} `toml:"editor"`
	Log struct {
		File  *string `toml:"file"`
		Level *string `toml:"level"`
	} `toml:"log"`
}

// LoadConfig reads the file at path over base. Keys missing from the file
// keep their value in base. A missing file returns base unchanged.
func LoadConfig(path string, base deadcode.Config) (deadcode.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(string(data), base)
}

// ParseConfig decodes TOML text over base.
func ParseConfig(text string, base deadcode.Config) (deadcode.Config, error) {
	var fc fileConfig
	md, err := toml.Decode(text, &fc)
	if err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}

	cfg := base
	if fc.Server.Command != nil {
		cfg.ServerCommand = *fc.Server.Command
		cfg.ServerArgs = nil
	}
	if fc.Server.Args != nil {
		cfg.ServerArgs = fc.Server.Args
	}
	if fc.Workspace.Extensions != nil {
		cfg.Extensions = fc.Workspace.Extensions
	}
	if fc.Workspace.MaxFiles != nil {
		cfg.MaxFiles = *fc.Workspace.MaxFiles
	}
	if fc.Workspace.Watch != nil {
		cfg.Watch = *fc.Workspace.Watch
	}
	if fc.Editor.Command != nil {
		cfg.Editor = *fc.Editor.Command
	}
	if fc.Log.File != nil {
		cfg.LogFile = *fc.Log.File
	}
	if fc.Log.Level != nil {
		cfg.LogLevel = *fc.Log.Level
	}
	return cfg, nil
}
