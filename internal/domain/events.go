// Package domain defines events for the event-driven architecture.
// Media backends report through events, and the controller announces its transitions the same way.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Media backend events
	EventMediaLoaded   EventType = "media.loaded"
	EventMediaProgress EventType = "media.progress"
	EventMediaEnded    EventType = "media.ended"
	EventMediaFailed   EventType = "media.failed"

	// Playback events
	EventTrackSelected   EventType = "track.selected"
	EventPlaybackStarted EventType = "playback.started"
	EventPlaybackPaused  EventType = "playback.paused"
	EventPlaybackError   EventType = "playback.error"

	// Mode events
	EventVolumeChanged  EventType = "volume.changed"
	EventShuffleToggled EventType = "shuffle.toggled"
	EventRepeatToggled  EventType = "repeat.toggled"

	// Playlist events
	EventPlaylistFiltered EventType = "playlist.filtered"
	EventCatalogReplaced  EventType = "catalog.replaced"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// MediaLoadedEvent is published by a media backend once a source is ready.
// Duration is 0 when the backend cannot tell the length.
type MediaLoadedEvent struct {
	baseEvent
	Handle   MediaHandle
	Duration time.Duration
}

// Type returns the event type.
func (e MediaLoadedEvent) Type() EventType {
	return EventMediaLoaded
}

// NewMediaLoadedEvent creates a new MediaLoadedEvent.
func NewMediaLoadedEvent(handle MediaHandle, duration time.Duration) MediaLoadedEvent {
	return MediaLoadedEvent{
		baseEvent: newBaseEvent(),
		Handle:    handle,
		Duration:  duration,
	}
}

// MediaProgressEvent is published periodically while a source plays.
type MediaProgressEvent struct {
	baseEvent
	Handle   MediaHandle
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e MediaProgressEvent) Type() EventType {
	return EventMediaProgress
}

// NewMediaProgressEvent creates a new MediaProgressEvent.
func NewMediaProgressEvent(handle MediaHandle, position, duration time.Duration) MediaProgressEvent {
	return MediaProgressEvent{
		baseEvent: newBaseEvent(),
		Handle:    handle,
		Position:  position,
		Duration:  duration,
	}
}

// MediaEndedEvent is published when a source plays to its end.
type MediaEndedEvent struct {
	baseEvent
	Handle MediaHandle
}

// Type returns the event type.
func (e MediaEndedEvent) Type() EventType {
	return EventMediaEnded
}

// NewMediaEndedEvent creates a new MediaEndedEvent.
func NewMediaEndedEvent(handle MediaHandle) MediaEndedEvent {
	return MediaEndedEvent{
		baseEvent: newBaseEvent(),
		Handle:    handle,
	}
}

// MediaFailedEvent is published when a backend fails asynchronously (network, decode).
type MediaFailedEvent struct {
	baseEvent
	Handle MediaHandle
	Err    error
}

// Type returns the event type.
func (e MediaFailedEvent) Type() EventType {
	return EventMediaFailed
}

// NewMediaFailedEvent creates a new MediaFailedEvent.
func NewMediaFailedEvent(handle MediaHandle, err error) MediaFailedEvent {
	return MediaFailedEvent{
		baseEvent: newBaseEvent(),
		Handle:    handle,
		Err:       err,
	}
}

// TrackSelectedEvent is published when a track is loaded into the media backend.
type TrackSelectedEvent struct {
	baseEvent
	Track Track
	Index int // index into the filtered view
}

// Type returns the event type.
func (e TrackSelectedEvent) Type() EventType {
	return EventTrackSelected
}

// NewTrackSelectedEvent creates a new TrackSelectedEvent.
func NewTrackSelectedEvent(track Track, index int) TrackSelectedEvent {
	return TrackSelectedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
	}
}

// PlaybackStartedEvent is published when playback starts or resumes.
type PlaybackStartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e PlaybackStartedEvent) Type() EventType {
	return EventPlaybackStarted
}

// NewPlaybackStartedEvent creates a new PlaybackStartedEvent.
func NewPlaybackStartedEvent(track Track) PlaybackStartedEvent {
	return PlaybackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// PlaybackPausedEvent is published when playback is paused.
type PlaybackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e PlaybackPausedEvent) Type() EventType {
	return EventPlaybackPaused
}

// NewPlaybackPausedEvent creates a new PlaybackPausedEvent.
func NewPlaybackPausedEvent(track Track, position time.Duration) PlaybackPausedEvent {
	return PlaybackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// PlaybackErrorEvent is published when a media failure leaves the player paused.
type PlaybackErrorEvent struct {
	baseEvent
	Track Track
	Err   error
}

// Type returns the event type.
func (e PlaybackErrorEvent) Type() EventType {
	return EventPlaybackError
}

// NewPlaybackErrorEvent creates a new PlaybackErrorEvent.
func NewPlaybackErrorEvent(track Track, err error) PlaybackErrorEvent {
	return PlaybackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Err:       err,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ShuffleToggledEvent is published when shuffle mode flips.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType {
	return EventShuffleToggled
}

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// RepeatToggledEvent is published when repeat mode flips.
type RepeatToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e RepeatToggledEvent) Type() EventType {
	return EventRepeatToggled
}

// NewRepeatToggledEvent creates a new RepeatToggledEvent.
func NewRepeatToggledEvent(enabled bool) RepeatToggledEvent {
	return RepeatToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// PlaylistFilteredEvent is published after a search term is applied.
type PlaylistFilteredEvent struct {
	baseEvent
	Term    string
	Matches int
}

// Type returns the event type.
func (e PlaylistFilteredEvent) Type() EventType {
	return EventPlaylistFiltered
}

// NewPlaylistFilteredEvent creates a new PlaylistFilteredEvent.
func NewPlaylistFilteredEvent(term string, matches int) PlaylistFilteredEvent {
	return PlaylistFilteredEvent{
		baseEvent: newBaseEvent(),
		Term:      term,
		Matches:   matches,
	}
}

// CatalogReplacedEvent is published when the catalog is reloaded.
type CatalogReplacedEvent struct {
	baseEvent
	Tracks int
}

// Type returns the event type.
func (e CatalogReplacedEvent) Type() EventType {
	return EventCatalogReplaced
}

// NewCatalogReplacedEvent creates a new CatalogReplacedEvent.
func NewCatalogReplacedEvent(tracks int) CatalogReplacedEvent {
	return CatalogReplacedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}
