package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// isolate runs the test in an empty directory with no config file in reach.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("TUNEDECK_CONFIG", "")
	return dir
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeWeb, cfg.UI.Mode)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, AudioBeep, cfg.Audio.Backend)
	assert.InDelta(t, 10.0, cfg.UI.VolumeStep, 0.0001)
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, Defaults().Web, cfg.Web)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.toml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ui]
mode = "desktop"

[audio]
backend = "mock"
progress_interval = "1s"

[catalog]
source = "/music"
watch = true

[web]
allowed_origins = ["http://localhost:3000"]
`), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, ModeDesktop, cfg.UI.Mode)
	assert.Equal(t, AudioMock, cfg.Audio.Backend)
	assert.Equal(t, time.Second, cfg.Audio.ProgressInterval)
	assert.Equal(t, 44100, cfg.Audio.SampleRate, "unset keys keep their defaults")
	assert.Equal(t, "/music", cfg.Catalog.Source)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Web.AllowedOrigins)
}

func TestLoad_FindsLocalFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tunedeck.toml"), []byte("[web]\naddr = \":9000\"\n"), 0o644))

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "tunedeck.toml", cfg.File)
	assert.Equal(t, ":9000", cfg.Web.Addr)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[web]\naddr = \":9000\"\n"), 0o644))

	t.Setenv("TUNEDECK_WEB_ADDR", "127.0.0.1:7000")
	t.Setenv("TUNEDECK_LOG_LEVEL", "DEBUG")
	t.Setenv("TUNEDECK_CATALOG_RELOAD_DELAY", "2s")
	t.Setenv("TUNEDECK_WEB_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Web.Addr)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Catalog.ReloadDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Web.AllowedOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TUNEDECK_UI_VOLUME_STEP=5\n"), 0o644))
	// godotenv sets process variables; register it so the test restores it.
	t.Setenv("TUNEDECK_UI_VOLUME_STEP", "")
	require.NoError(t, os.Unsetenv("TUNEDECK_UI_VOLUME_STEP"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, cfg.UI.VolumeStep, 0.0001)

	_, err = Load("", filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui\nmode="), 0o644))

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown mode", func(c *Config) { c.UI.Mode = "tui" }, "ui.mode"},
		{"unknown backend", func(c *Config) { c.Audio.Backend = "bass" }, "audio.backend"},
		{"zero volume step", func(c *Config) { c.UI.VolumeStep = 0 }, "ui.volume_step"},
		{"negative sample rate", func(c *Config) { c.Audio.SampleRate = -1 }, "audio.sample_rate"},
		{"zero buffer", func(c *Config) { c.Audio.BufferSize = 0 }, "audio.buffer_size"},
		{"zero progress interval", func(c *Config) { c.Audio.ProgressInterval = 0 }, "audio.progress_interval"},
		{"empty addr", func(c *Config) { c.Web.Addr = "" }, "web.addr"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			var validation *domain.ValidationError
			require.ErrorAs(t, cfg.Validate(), &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	isolate(t)
	t.Setenv("TUNEDECK_UI_MODE", "tui")

	_, err := Load("", "")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}
