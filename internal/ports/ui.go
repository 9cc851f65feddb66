// Package ports define the View interface for UI abstraction.
// This interface lets the controller drive a desktop window or a browser page alike.
package ports

import (
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// View is the interface the PlayerController renders into.
//
// The controller calls these methods as an explicit side effect after each transition.
// Implementations must not call back into the controller synchronously from inside a
// View method; UI toolkits should queue the update onto their own event loop.
type View interface {
	// RenderList redraws the track list. activeIndex is domain.NoIndex when nothing is
	// active; an empty tracks slice means the empty-list state.
	RenderList(tracks []domain.Track, activeIndex int)

	// HighlightActive marks the list row at index as the current track.
	HighlightActive(index int)

	// ShowNowPlaying displays the title, artist and cover of the loaded track.
	ShowNowPlaying(track domain.Track)

	// SetPlayPauseAffordance switches between the play and pause indicator.
	SetPlayPauseAffordance(isPlaying bool)

	// SetShuffleAffordance highlights the shuffle control.
	SetShuffleAffordance(enabled bool)

	// SetRepeatAffordance highlights the repeat control.
	SetRepeatAffordance(enabled bool)

	// SetVolumeLevel moves the volume control. volume is in [0,1].
	SetVolumeLevel(volume float64)

	// UpdateTimeDisplay updates the progress bar and the time labels.
	// total is 0 while the duration is unknown.
	UpdateTimeDisplay(current, total time.Duration)

	// ShowPlaybackError shows the non-fatal playback error state.
	ShowPlaybackError(message string)
}
