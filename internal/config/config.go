// Package config loads tunedeck settings from defaults, a TOML file, a .env
// file and TUNEDECK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TUNEDECK_"

// UI modes.
const (
	ModeWeb     = "web"
	ModeDesktop = "desktop"
)

// Audio backends for the desktop mode.
const (
	AudioBeep = "beep"
	AudioMock = "mock"
)

// Config is the complete application configuration.
type Config struct {
	UI      UIConfig      `toml:"ui" envPrefix:"UI_"`
	Audio   AudioConfig   `toml:"audio" envPrefix:"AUDIO_"`
	Catalog CatalogConfig `toml:"catalog" envPrefix:"CATALOG_"`
	Web     WebConfig     `toml:"web" envPrefix:"WEB_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
	Prefs   PrefsConfig   `toml:"prefs" envPrefix:"PREFS_"`

	// File is the config file that was read, empty when none was found.
	File string `toml:"-"`
}

type UIConfig struct {
	Mode       string  `toml:"mode" env:"MODE"`
	VolumeStep float64 `toml:"volume_step" env:"VOLUME_STEP"`
	Title      string  `toml:"title" env:"TITLE"`
}

type AudioConfig struct {
	Backend string `toml:"backend" env:"BACKEND"`
	// SampleRate is the speaker rate; decoded streams are resampled to it.
	SampleRate int `toml:"sample_rate" env:"SAMPLE_RATE"`
	// BufferSize is the speaker buffer length.
	BufferSize time.Duration `toml:"buffer_size" env:"BUFFER_SIZE"`
	// ProgressInterval is how often playback position is reported.
	ProgressInterval time.Duration `toml:"progress_interval" env:"PROGRESS_INTERVAL"`
}

type CatalogConfig struct {
	// Source is a catalog file (.json, .toml) or a music directory. Empty means the demo catalog.
	Source      string        `toml:"source" env:"SOURCE"`
	Watch       bool          `toml:"watch" env:"WATCH"`
	ReloadDelay time.Duration `toml:"reload_delay" env:"RELOAD_DELAY"`
}

type WebConfig struct {
	Addr           string   `toml:"addr" env:"ADDR"`
	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level      string `toml:"level" env:"LEVEL"`
	Format     string `toml:"format" env:"FORMAT"`
	File       string `toml:"file" env:"FILE"`
	MaxSizeMB  int    `toml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `toml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `toml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `toml:"compress" env:"COMPRESS"`
}

type PrefsConfig struct {
	// Path of the preferences file used outside the desktop UI.
	Path string `toml:"path" env:"PATH"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		UI: UIConfig{
			Mode:       ModeWeb,
			VolumeStep: 10,
			Title:      "tunedeck",
		},
		Audio: AudioConfig{
			Backend:          AudioBeep,
			SampleRate:       44100,
			BufferSize:       100 * time.Millisecond,
			ProgressInterval: 250 * time.Millisecond,
		},
		Catalog: CatalogConfig{
			ReloadDelay: 500 * time.Millisecond,
		},
		Web: WebConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:      "INFO",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Prefs: PrefsConfig{
			Path: filepath.Join(configDir(), "preferences.toml"),
		},
	}
}

// Load builds the configuration. path names an explicit config file; when it is
// empty the standard locations are searched and a missing file is not an error.
// envFile is loaded with godotenv without overriding variables already set.
func Load(path, envFile string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = FindConfigFile()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			cfg.File = path
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile returns the first existing config file among
// $TUNEDECK_CONFIG, ./tunedeck.toml and $XDG_CONFIG_HOME/tunedeck/config.toml.
func FindConfigFile() string {
	paths := []string{
		os.Getenv(EnvPrefix + "CONFIG"),
		"tunedeck.toml",
		filepath.Join(configDir(), "config.toml"),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tunedeck")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tunedeck")
	}
	return ".tunedeck"
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ModeWeb, ModeDesktop}, c.UI.Mode) {
		return domain.NewValidationError("ui.mode", c.UI.Mode, "must be web or desktop")
	}
	if !slices.Contains([]string{AudioBeep, AudioMock}, c.Audio.Backend) {
		return domain.NewValidationError("audio.backend", c.Audio.Backend, "must be beep or mock")
	}
	if c.UI.VolumeStep <= 0 || c.UI.VolumeStep > 100 {
		return domain.NewValidationError("ui.volume_step", c.UI.VolumeStep, "must be in (0, 100]")
	}
	if c.Audio.SampleRate <= 0 {
		return domain.NewValidationError("audio.sample_rate", c.Audio.SampleRate, "must be positive")
	}
	if c.Audio.BufferSize <= 0 {
		return domain.NewValidationError("audio.buffer_size", c.Audio.BufferSize, "must be positive")
	}
	if c.Audio.ProgressInterval <= 0 {
		return domain.NewValidationError("audio.progress_interval", c.Audio.ProgressInterval, "must be positive")
	}
	if c.Web.Addr == "" {
		return domain.NewValidationError("web.addr", c.Web.Addr, "listen address is required")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return domain.NewValidationError("log.format", c.Log.Format, "must be text or json")
	}
	return nil
}
