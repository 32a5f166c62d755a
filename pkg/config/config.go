// Package config loads tool settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/grid"
)

const (
	appDir   = "motor-curve-tool"
	fileName = "config.toml"
)

// Config holds every setting of the tool.
type Config struct {
	Editor Editor `toml:"editor"`
	Web    Web    `toml:"web"`
	Log    Log    `toml:"log"`
}

// Editor configures editing sessions.
type Editor struct {
	// Epsilon is the smallest torque change recorded as an edit.
	Epsilon float64 `toml:"epsilon"`
	// BackupOnSave writes a timestamped copy before overwriting a file.
	BackupOnSave bool `toml:"backup_on_save"`
	// ChartHeight is the number of text rows of the chart view.
	ChartHeight int `toml:"chart_height"`
}

type Web struct {
	Port int `toml:"port"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Editor: Editor{Epsilon: grid.DefaultEpsilon, BackupOnSave: true, ChartHeight: 12},
		Web:    Web{Port: 8080},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath is config.toml under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		pterm.Warning.Printf("Ignoring unknown config keys in %s: %v\n", path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the editor cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Editor.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("editor.epsilon must not be negative, got %g", c.Editor.Epsilon))
	}
	if c.Editor.ChartHeight < 2 {
		errs = append(errs, fmt.Errorf("editor.chart_height must be at least 2, got %d", c.Editor.ChartHeight))
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port out of range: %d", c.Web.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a pterm log level.
func ParseLevel(name string) (pterm.LogLevel, error) {
	switch name {
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	}
	return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Logger returns the structured logger configured by c.
func (c Config) Logger() *pterm.Logger {
	level, _ := ParseLevel(c.Log.Level)
	return pterm.DefaultLogger.WithLevel(level)
}
