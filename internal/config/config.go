package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Editor    EditorConfig    `toml:"editor"`
	Autosave  AutosaveConfig  `toml:"autosave"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type EditorConfig struct {
	// UndoCapacity bounds retained undo history; 0 keeps everything.
	UndoCapacity  int  `toml:"undo_capacity"`
	DebugCommands bool `toml:"debug_commands"` // log every execute/revert/finalize
}

type AutosaveConfig struct {
	Enabled  bool          `toml:"enabled"`
	Interval time.Duration `toml:"interval"`
	Suffix   string        `toml:"suffix"` // appended to the scene filename
}

type ScriptingConfig struct {
	MacroDir string `toml:"macro_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault falls back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Editor: EditorConfig{
			UndoCapacity:  512,
			DebugCommands: false,
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
			Suffix:   ".autosave",
		},
		Scripting: ScriptingConfig{
			MacroDir: "macros",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
