// Package ports define interfaces for dependency inversion.
// These interfaces keep the player logic independent of the audio output and the UI toolkit.
package ports

import (
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// MediaBackend is the capability that actually decodes and plays audio.
// Implementations: a local speaker backend, a browser-driven remote backend and a mock.
//
// Every Load issues a new MediaHandle. Methods called with a handle that is no longer
// current return domain.ErrStaleHandle. Asynchronous reports (loaded, progress, ended,
// failed) go to the EventBus tagged with the handle they belong to.
//
// Implementations must be thread-safe and must never publish an event from inside one of
// these method calls: the controller calls them while holding its own lock.
type MediaBackend interface {
	// Load replaces the current source with url. The new source is paused at position 0.
	Load(url string) (domain.MediaHandle, error)

	// Play starts or resumes playback of the loaded source.
	Play(handle domain.MediaHandle) error

	// Pause pauses playback, preserving the position.
	Pause(handle domain.MediaHandle) error

	// SetPosition moves the playback position.
	SetPosition(handle domain.MediaHandle, position time.Duration) error

	// Position returns the current playback position.
	Position(handle domain.MediaHandle) (time.Duration, error)

	// Duration returns the total length of the source, or false while it is unknown.
	Duration(handle domain.MediaHandle) (time.Duration, bool)

	// SetVolume sets the output level in [0,1]. It applies to the current and future sources.
	SetVolume(volume float64) error

	// Close stops playback and releases output resources.
	Close() error
}
