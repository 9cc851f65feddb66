// Package ports define repository interfaces for catalog and preference access.
package ports

import (
	"context"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// CatalogSource supplies the ordered track list.
// Implementations read a JSON or TOML file, scan a music directory, or return the demo catalog.
type CatalogSource interface {
	// Tracks returns the catalog in display order.
	Tracks(ctx context.Context) ([]domain.Track, error)

	// Describe names the source for logs ("demo catalog", "file /path", "directory /path").
	Describe() string
}

// PreferencesRepository handles the persistence of user preferences.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// Load retrieves saved preferences, falling back to domain.DefaultPreferences
	// for anything never saved.
	Load() (domain.Preferences, error)

	// SaveVolume persists the volume level (0.0 to 1.0).
	SaveVolume(volume float64) error

	// SaveShuffle persists the shuffle mode.
	SaveShuffle(enabled bool) error

	// SaveRepeat persists the repeat mode.
	SaveRepeat(enabled bool) error

	// Clear removes all saved preferences.
	Clear() error
}
