// Package file provides repository implementations backed by files on disk.
package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// PreferencesRepository implements ports.PreferencesRepository with a TOML file.
// It is used by the browser UI, which runs without a Fyne app to own preferences.
//
// Every save rewrites the whole file through a temporary file and a rename.
//
// Thread-safe: All operations protected by sync.Mutex.
type PreferencesRepository struct {
	path string
	mu   sync.Mutex
}

// NewPreferencesRepository creates a repository persisting to path.
// The file and its directory are created on the first save.
func NewPreferencesRepository(path string) *PreferencesRepository {
	return &PreferencesRepository{path: path}
}

// Path returns the backing file.
func (r *PreferencesRepository) Path() string {
	return r.path
}

// Load retrieves saved preferences. A missing file yields the defaults.
func (r *PreferencesRepository) Load() (domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *PreferencesRepository) read() (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	if _, err := toml.DecodeFile(r.path, &prefs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultPreferences(), nil
		}
		return domain.DefaultPreferences(), domain.NewRepositoryError("load", "preferences", "failed to decode "+r.path, err)
	}
	if prefs.Volume < 0 || prefs.Volume > 1 {
		return domain.DefaultPreferences(), domain.NewRepositoryError("load", "preferences", "stored volume out of range", nil)
	}
	return prefs, nil
}

func (r *PreferencesRepository) update(op string, apply func(*domain.Preferences)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.read()
	if err != nil {
		// Overwrite a corrupt file rather than failing every save
		prefs = domain.DefaultPreferences()
	}
	apply(&prefs)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return domain.NewRepositoryError(op, "preferences", "failed to create directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".prefs-*.toml")
	if err != nil {
		return domain.NewRepositoryError(op, "preferences", "failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(prefs); err != nil {
		tmp.Close()
		return domain.NewRepositoryError(op, "preferences", "failed to encode", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewRepositoryError(op, "preferences", "failed to write", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return domain.NewRepositoryError(op, "preferences", "failed to replace "+r.path, err)
	}
	return nil
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0.0 and 1.0")
	}
	return r.update("save_volume", func(p *domain.Preferences) { p.Volume = volume })
}

// SaveShuffle persists the shuffle mode.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	return r.update("save_shuffle", func(p *domain.Preferences) { p.Shuffle = enabled })
}

// SaveRepeat persists the repeat mode.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	return r.update("save_repeat", func(p *domain.Preferences) { p.Repeat = enabled })
}

// Clear removes the preferences file.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.NewRepositoryError("clear", "preferences", "failed to remove "+r.path, err)
	}
	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
