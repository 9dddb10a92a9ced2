// Package config loads the editor's TOML configuration, mirroring the
// teacher's internal/config: a sync.Once-guarded LoadConfig that layers
// defaults, a config file, then flag overrides, followed by validation
// that resets out-of-range fields back to their defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/glyph/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger logger.Config `toml:"logger"`
	Editor EditorConfig  `toml:"editor"`
}

// EditorConfig holds editor-specific settings.
type EditorConfig struct {
	TabWidth         int  `toml:"tab_width"`
	ScrollOff        int  `toml:"scroll_off"`
	SystemClipboard  bool `toml:"system_clipboard"`
	StatusBarHeight  int  `toml:"status_bar_height"`
	CoalesceWindowMs int  `toml:"coalesce_window_ms"`
	UndoLimit        int  `toml:"undo_limit"`
}

// Flags represents CLI flag overrides applied after the config file.
type Flags struct {
	TabWidth        *int
	ScrollOff       *int
	SystemClipboard *bool
	LogLevel        *string
	LogFilePath     *string
}

// ApplyOverrides writes any set flag onto cfg.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f == nil {
		return
	}
	if f.TabWidth != nil {
		cfg.Editor.TabWidth = *f.TabWidth
	}
	if f.ScrollOff != nil {
		cfg.Editor.ScrollOff = *f.ScrollOff
	}
	if f.SystemClipboard != nil {
		cfg.Editor.SystemClipboard = *f.SystemClipboard
	}
	if f.LogLevel != nil {
		cfg.Logger.LogLevel = *f.LogLevel
	}
	if f.LogFilePath != nil {
		cfg.Logger.LogFilePath = *f.LogFilePath
	}
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{LogLevel: "info"},
		Editor: EditorConfig{
			TabWidth:         DefaultTabWidth,
			ScrollOff:        DefaultScrollOff,
			SystemClipboard:  DefaultSystemClipboard,
			StatusBarHeight:  StatusBarHeight,
			CoalesceWindowMs: DefaultCoalesceWindowMs,
			UndoLimit:        DefaultUndoLimit,
		},
	}
}

func loadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() {
	d := NewDefaultConfig()
	if c.Editor.TabWidth <= 0 {
		c.Editor.TabWidth = d.Editor.TabWidth
	}
	if c.Editor.ScrollOff < 0 {
		c.Editor.ScrollOff = d.Editor.ScrollOff
	}
	if c.Editor.StatusBarHeight <= 0 {
		c.Editor.StatusBarHeight = d.Editor.StatusBarHeight
	}
	if c.Editor.CoalesceWindowMs <= 0 {
		c.Editor.CoalesceWindowMs = d.Editor.CoalesceWindowMs
	}
	if c.Editor.UndoLimit <= 0 {
		c.Editor.UndoLimit = d.Editor.UndoLimit
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = d.Logger.LogLevel
	}
}

// LoadConfig orchestrates default → file → flags → validate, once.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		cfg := NewDefaultConfig()

		effectivePath := configFilePath
		if effectivePath == "" {
			if dir, err := os.UserConfigDir(); err == nil {
				effectivePath = filepath.Join(dir, ConfigDirName, DefaultConfigFileName)
			}
		}

		if effectivePath != "" {
			fileCfg, err := loadFromFile(effectivePath)
			if err != nil {
				loadErr = err
			} else {
				mergeFileConfig(cfg, fileCfg)
			}
		}

		flags.ApplyOverrides(cfg)
		cfg.validate()
		loadedConfig = cfg
	})
	return loadedConfig, loadErr
}

func mergeFileConfig(cfg, fileCfg *Config) {
	if fileCfg.Logger.LogLevel != "" {
		cfg.Logger = fileCfg.Logger
	}
	if fileCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = fileCfg.Editor.TabWidth
	}
	if fileCfg.Editor.ScrollOff >= 0 {
		cfg.Editor.ScrollOff = fileCfg.Editor.ScrollOff
	}
	if fileCfg.Editor.StatusBarHeight > 0 {
		cfg.Editor.StatusBarHeight = fileCfg.Editor.StatusBarHeight
	}
	if fileCfg.Editor.CoalesceWindowMs > 0 {
		cfg.Editor.CoalesceWindowMs = fileCfg.Editor.CoalesceWindowMs
	}
	if fileCfg.Editor.UndoLimit > 0 {
		cfg.Editor.UndoLimit = fileCfg.Editor.UndoLimit
	}
	cfg.Editor.SystemClipboard = fileCfg.Editor.SystemClipboard
}

// Get returns the loaded configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
