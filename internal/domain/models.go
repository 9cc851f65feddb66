// Package domain contains core player models and logic with no external dependencies.
// This package defines the fundamental entities of the tunedeck playlist player.
package domain

import (
	"time"
)

// Track is an immutable catalog entry.
// Tracks are created when a catalog is loaded and never mutated afterwards.
type Track struct {
	// ID is unique within a catalog
	ID int `json:"id" toml:"id"`

	// Title is the song title
	Title string `json:"title" toml:"title"`

	// Artist is the performing artist name
	Artist string `json:"artist" toml:"artist"`

	// CoverURL points at the cover image; it may be empty
	CoverURL string `json:"coverUrl" toml:"cover_url"`

	// MediaURL is resolvable by the media backend (http(s) URL or local path)
	MediaURL string `json:"mediaUrl" toml:"media_url"`
}

// DisplayName returns "Title - Artist", or just the title when no artist is known.
func (t Track) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " - " + t.Artist
}

// PlaybackStatus represents the controller's playback state.
type PlaybackStatus int

const (
	// StatusIdle indicates no track is loaded
	StatusIdle PlaybackStatus = iota

	// StatusPaused indicates a track is loaded but not playing
	StatusPaused

	// StatusPlaying indicates playback is active
	StatusPlaying
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// NoIndex marks the absence of a current index (empty filtered view).
const NoIndex = -1

// PlayerState is a snapshot of the player.
// Only PlayerController mutates the live state; callers get copies.
type PlayerState struct {
	// CurrentIndex indexes Tracks, or NoIndex when Tracks is empty
	CurrentIndex int `json:"currentIndex"`

	// CurrentTrack is the loaded track (nil when idle)
	CurrentTrack *Track `json:"currentTrack,omitempty"`

	// Tracks is the filtered view
	Tracks []Track `json:"tracks"`

	// SearchTerm is the active search filter
	SearchTerm string `json:"searchTerm"`

	Status      PlaybackStatus `json:"-"`
	IsPlaying   bool           `json:"isPlaying"`
	IsShuffled  bool           `json:"isShuffled"`
	IsRepeating bool           `json:"isRepeating"`

	// Volume is in [0,1]
	Volume float64 `json:"volume"`

	// Position and Duration of the loaded track; Duration is 0 when unknown
	Position time.Duration `json:"-"`
	Duration time.Duration `json:"-"`
}

// Preferences contain the user settings that survive restarts.
// Playback position is deliberately absent.
type Preferences struct {
	// Volume is the saved volume level (0.0 to 1.0)
	Volume float64 `toml:"volume"`

	// Shuffle indicates if shuffle mode is enabled at start
	Shuffle bool `toml:"shuffle"`

	// Repeat indicates if repeat mode is enabled at start
	Repeat bool `toml:"repeat"`
}

// DefaultPreferences returns the preferences used on first start.
func DefaultPreferences() Preferences {
	return Preferences{Volume: DefaultVolume}
}

// DefaultVolume is the initial volume level.
const DefaultVolume = 1.0

// MediaHandle identifies one load of a media source in a media backend.
// A new handle is issued for every load, so events tagged with an older
// handle can be recognised as stale.
type MediaHandle int64

const (
	// InvalidMediaHandle represents an invalid or uninitialized media handle
	InvalidMediaHandle MediaHandle = 0
)
