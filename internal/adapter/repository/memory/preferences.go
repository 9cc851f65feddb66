// Package memory provides repository implementations on top of Fyne preferences.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

const (
	keyVolume  = "preferences.volume"
	keyShuffle = "preferences.shuffle"
	keyRepeat  = "preferences.repeat"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Fyne stores preferences in OS-specific app data directories keyed by the app ID
// (e.g. ~/.config/fyne/<app id>/preferences.json on Linux).
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// Load retrieves saved preferences with defaults for missing keys.
func (r *PreferencesRepository) Load() (domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defaults := domain.DefaultPreferences()
	volume := r.prefs.FloatWithFallback(keyVolume, defaults.Volume)
	if volume < 0 || volume > 1 {
		return defaults, domain.NewRepositoryError("load", "preferences", "stored volume out of range", nil)
	}
	return domain.Preferences{
		Volume:  volume,
		Shuffle: r.prefs.BoolWithFallback(keyShuffle, defaults.Shuffle),
		Repeat:  r.prefs.BoolWithFallback(keyRepeat, defaults.Repeat),
	}, nil
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0.0 and 1.0")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// SaveShuffle persists the shuffle mode.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetBool(keyShuffle, enabled)
	return nil
}

// SaveRepeat persists the repeat mode.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetBool(keyRepeat, enabled)
	return nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyShuffle)
	r.prefs.RemoveValue(keyRepeat)
	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
