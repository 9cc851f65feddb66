package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// PlayerController owns the playback state (playing, shuffle, repeat, volume) and
// orchestrates the playlist, the media backend and the view.
//
// All public operations and all media event handlers run under one mutex, so state
// transitions never interleave even though media events arrive on backend goroutines.
// The controller calls the view and the media backend while holding the lock; neither
// may call back into the controller synchronously.
type PlayerController struct {
	// Dependencies (injected)
	logger   *slog.Logger
	playlist *PlaylistState
	media    ports.MediaBackend
	view     ports.View
	bus      ports.EventBus

	// State
	handle      domain.MediaHandle
	loaded      *domain.Track
	isPlaying   bool
	isShuffled  bool
	isRepeating bool
	volume      float64
	position    time.Duration
	duration    time.Duration // 0 while unknown
	volumeStep  float64

	mu   sync.Mutex
	subs []domain.SubscriptionID
}

// NewPlayerController creates a controller. A nil view renders nothing until SetView is called.
func NewPlayerController(
	logger *slog.Logger,
	playlist *PlaylistState,
	media ports.MediaBackend,
	view ports.View,
	bus ports.EventBus,
) *PlayerController {
	if view == nil {
		view = nopView{}
	}
	c := &PlayerController{
		logger:   logger.With("component", "player"),
		playlist: playlist,
		media:    media,
		view:     view,
		bus:      bus,
		handle:   domain.InvalidMediaHandle,
		volume:   domain.DefaultVolume,

		volumeStep: VolumeStep,
	}

	c.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventMediaLoaded, c.onMediaLoaded),
		bus.Subscribe(domain.EventMediaProgress, c.onMediaProgress),
		bus.Subscribe(domain.EventMediaEnded, c.onMediaEnded),
		bus.Subscribe(domain.EventMediaFailed, c.onMediaFailed),
	}

	logger.Debug("player controller initialized", slog.Int("tracks", playlist.Len()))
	return c
}

// SetView replaces the view. Used when the view is built after the controller.
func (c *PlayerController) SetView(view ports.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if view == nil {
		view = nopView{}
	}
	c.view = view
}

// Start renders the initial state and loads the first track without playing it.
func (c *PlayerController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.renderAllLocked()
	if err := c.media.SetVolume(c.volume); err != nil {
		c.logger.Warn("failed to apply volume", slog.Any("error", err))
	}
	if !c.playlist.IsEmpty() {
		c.selectTrackLocked(c.playlist.CurrentIndex())
	}
}

// Refresh re-renders the whole view from the current state, e.g. for a newly connected client.
func (c *PlayerController) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.renderAllLocked()
	if c.loaded != nil {
		c.view.ShowNowPlaying(*c.loaded)
		c.view.SetPlayPauseAffordance(c.isPlaying)
		c.view.UpdateTimeDisplay(c.position, c.duration)
	}
}

func (c *PlayerController) renderAllLocked() {
	c.view.RenderList(c.playlist.Filtered(), c.playlist.CurrentIndex())
	c.view.SetShuffleAffordance(c.isShuffled)
	c.view.SetRepeatAffordance(c.isRepeating)
	c.view.SetVolumeLevel(c.volume)
	c.view.SetPlayPauseAffordance(c.isPlaying)
}

// SelectTrack loads the track at index into the media backend without starting playback.
func (c *PlayerController) SelectTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.playlist.TrackAt(index); err != nil {
		c.logger.Error("select track out of range", slog.Int("index", index), slog.Int("tracks", c.playlist.Len()))
		return fmt.Errorf("select track %d: %w", index, err)
	}
	c.selectTrackLocked(index)
	return nil
}

// selectTrackLocked expects a valid index. Load failures are shown, not returned.
func (c *PlayerController) selectTrackLocked(index int) {
	track, err := c.playlist.TrackAt(index)
	if err != nil {
		return
	}
	_ = c.playlist.Select(index)

	c.loaded = &track
	c.isPlaying = false
	c.position = 0
	c.duration = 0

	c.view.HighlightActive(index)
	c.view.ShowNowPlaying(track)
	c.view.SetPlayPauseAffordance(false)

	handle, err := c.media.Load(track.MediaURL)
	if err != nil {
		c.handle = domain.InvalidMediaHandle
		c.view.UpdateTimeDisplay(0, 0)
		c.failLocked(err)
		return
	}
	c.handle = handle
	if d, ok := c.media.Duration(handle); ok {
		c.duration = d
	}
	c.view.UpdateTimeDisplay(0, c.duration)

	c.logger.Debug("track selected",
		slog.Int("index", index),
		slog.Int("track_id", track.ID),
		slog.Int64("handle", int64(handle)))
	c.bus.Publish(domain.NewTrackSelectedEvent(track, index))
}

// Play starts or resumes playback. It is a no-op on an empty playlist.
func (c *PlayerController) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playLocked()
}

func (c *PlayerController) playLocked() {
	if c.playlist.IsEmpty() {
		c.logger.Debug("play ignored", slog.Any("reason", domain.ErrEmptyPlaylist))
		return
	}
	if c.handle == domain.InvalidMediaHandle {
		c.selectTrackLocked(c.playlist.CurrentIndex())
		if c.handle == domain.InvalidMediaHandle {
			return
		}
	}
	if c.isPlaying {
		return
	}
	c.startPlaybackLocked()
}

// startPlaybackLocked commands the backend regardless of isPlaying.
func (c *PlayerController) startPlaybackLocked() {
	if err := c.media.Play(c.handle); err != nil {
		c.failLocked(err)
		return
	}
	c.isPlaying = true
	c.view.SetPlayPauseAffordance(true)
	c.bus.Publish(domain.NewPlaybackStartedEvent(*c.loaded))
}

// Pause pauses playback. It is idempotent.
func (c *PlayerController) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *PlayerController) pauseLocked() {
	if !c.isPlaying {
		return
	}
	if err := c.media.Pause(c.handle); err != nil {
		c.logger.Warn("media pause failed", slog.Any("error", err))
	}
	if pos, err := c.media.Position(c.handle); err == nil {
		c.position = pos
	}
	c.isPlaying = false
	c.view.SetPlayPauseAffordance(false)
	c.bus.Publish(domain.NewPlaybackPausedEvent(*c.loaded, c.position))
}

// TogglePlayPause plays when paused and pauses when playing.
func (c *PlayerController) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isPlaying {
		c.pauseLocked()
		return
	}
	c.playLocked()
}

// PlayTrack selects the track at index and starts it. It is a no-op on an empty playlist.
func (c *PlayerController) PlayTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playlist.IsEmpty() {
		c.logger.Debug("play track ignored", slog.Any("reason", domain.ErrEmptyPlaylist))
		return nil
	}
	if _, err := c.playlist.TrackAt(index); err != nil {
		c.logger.Error("play track out of range", slog.Int("index", index), slog.Int("tracks", c.playlist.Len()))
		return fmt.Errorf("play track %d: %w", index, err)
	}
	c.selectTrackLocked(index)
	if c.handle != domain.InvalidMediaHandle {
		c.startPlaybackLocked()
	}
	return nil
}

// Advance moves to the next (or a random, when shuffled) track and keeps playing
// only if the player was playing.
func (c *PlayerController) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked()
}

func (c *PlayerController) advanceLocked() {
	next, err := c.playlist.NextIndex(c.isShuffled)
	if err != nil {
		c.logger.Debug("advance ignored", slog.Any("reason", err))
		return
	}
	c.moveToLocked(next)
}

// Retreat moves to the previous track. Shuffle does not apply.
func (c *PlayerController) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.playlist.PrevIndex()
	if err != nil {
		c.logger.Debug("retreat ignored", slog.Any("reason", err))
		return
	}
	c.moveToLocked(prev)
}

func (c *PlayerController) moveToLocked(index int) {
	wasPlaying := c.isPlaying
	c.selectTrackLocked(index)
	if wasPlaying && c.handle != domain.InvalidMediaHandle {
		c.startPlaybackLocked()
	}
}

// OnTrackEnded handles the end of the current track: replay it when repeating,
// advance otherwise.
func (c *PlayerController) OnTrackEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackEndedLocked()
}

func (c *PlayerController) trackEndedLocked() {
	if c.isRepeating && c.handle != domain.InvalidMediaHandle {
		if err := c.media.SetPosition(c.handle, 0); err != nil {
			c.failLocked(err)
			return
		}
		c.position = 0
		c.view.UpdateTimeDisplay(0, c.duration)
		c.startPlaybackLocked()
		return
	}
	next, err := c.playlist.NextIndex(c.isShuffled)
	if err != nil {
		// The source has stopped and nothing is visible to move to.
		c.logger.Debug("nothing to play after ended track", slog.Any("reason", err))
		c.isPlaying = false
		c.view.SetPlayPauseAffordance(false)
		return
	}
	c.moveToLocked(next)
}

// SetSearchTerm filters the playlist. A non-empty result loads its first track
// without playing; an empty result leaves the media backend untouched.
func (c *PlayerController) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playlist.ApplySearch(term)
	tracks := c.playlist.Filtered()
	c.bus.Publish(domain.NewPlaylistFilteredEvent(term, len(tracks)))

	if len(tracks) == 0 {
		c.view.RenderList(tracks, domain.NoIndex)
		return
	}
	c.view.RenderList(tracks, 0)
	c.selectTrackLocked(0)
}

// Seek moves playback to fraction (0..1) of the duration.
// It fails with domain.ErrInvalidSeek for out-of-range input or an unknown duration.
func (c *PlayerController) Seek(fraction float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		c.logger.Debug("seek rejected", slog.Float64("fraction", fraction))
		return fmt.Errorf("seek to %v: %w", fraction, domain.ErrInvalidSeek)
	}
	if c.handle == domain.InvalidMediaHandle {
		return fmt.Errorf("seek: %w: %w", domain.ErrInvalidSeek, domain.ErrNoTrackLoaded)
	}
	duration := c.duration
	if duration <= 0 {
		d, ok := c.media.Duration(c.handle)
		if !ok || d <= 0 {
			return fmt.Errorf("seek: %w: %w", domain.ErrInvalidSeek, domain.ErrDurationUnknown)
		}
		duration = d
		c.duration = d
	}

	position := time.Duration(fraction * float64(duration))
	if err := c.media.SetPosition(c.handle, position); err != nil {
		c.failLocked(err)
		return nil
	}
	c.position = position
	c.view.UpdateTimeDisplay(position, duration)
	return nil
}

// SetVolume sets the volume from a 0..100 level. Out-of-range input is clamped.
func (c *PlayerController) SetVolume(level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setVolumeLocked(level)
}

// AdjustVolume changes the volume by delta on the 0..100 scale.
func (c *PlayerController) AdjustVolume(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setVolumeLocked(math.Round(c.volume*100) + delta)
}

// SetVolumeStep changes how far the volume shortcuts move the level (0..100 scale).
// Non-positive steps are ignored.
func (c *PlayerController) SetVolumeStep(step float64) {
	if step <= 0 || math.IsNaN(step) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volumeStep = step
}

func (c *PlayerController) stepVolume(direction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setVolumeLocked(math.Round(c.volume*100) + direction*c.volumeStep)
}

func (c *PlayerController) setVolumeLocked(level float64) {
	if math.IsNaN(level) {
		level = 0
	}
	volume := lo.Clamp(level, 0, 100) / 100

	if err := c.media.SetVolume(volume); err != nil {
		c.logger.Warn("media volume failed", slog.Any("error", err))
	}
	c.volume = volume
	c.view.SetVolumeLevel(volume)
	c.bus.Publish(domain.NewVolumeChangedEvent(volume))
}

// ToggleShuffle flips shuffle mode.
func (c *PlayerController) ToggleShuffle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setShuffleLocked(!c.isShuffled)
}

// SetShuffle sets shuffle mode.
func (c *PlayerController) SetShuffle(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setShuffleLocked(enabled)
}

func (c *PlayerController) setShuffleLocked(enabled bool) {
	c.isShuffled = enabled
	c.view.SetShuffleAffordance(enabled)
	c.bus.Publish(domain.NewShuffleToggledEvent(enabled))
}

// ToggleRepeat flips repeat mode.
func (c *PlayerController) ToggleRepeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setRepeatLocked(!c.isRepeating)
}

// SetRepeat sets repeat mode.
func (c *PlayerController) SetRepeat(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setRepeatLocked(enabled)
}

func (c *PlayerController) setRepeatLocked(enabled bool) {
	c.isRepeating = enabled
	c.view.SetRepeatAffordance(enabled)
	c.bus.Publish(domain.NewRepeatToggledEvent(enabled))
}

// ReplaceCatalog swaps in a reloaded catalog: playback pauses, the search resets
// and the first track is loaded.
func (c *PlayerController) ReplaceCatalog(tracks []domain.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pauseLocked()
	c.playlist.SetCatalog(tracks)
	c.bus.Publish(domain.NewCatalogReplacedEvent(len(tracks)))
	c.logger.Info("catalog replaced", slog.Int("tracks", len(tracks)))

	c.view.RenderList(c.playlist.Filtered(), c.playlist.CurrentIndex())
	if !c.playlist.IsEmpty() {
		c.selectTrackLocked(0)
	}
}

// State returns a snapshot of the player.
func (c *PlayerController) State() domain.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := domain.PlayerState{
		CurrentIndex: c.playlist.CurrentIndex(),
		Tracks:       c.playlist.Filtered(),
		SearchTerm:   c.playlist.SearchTerm(),
		Status:       c.statusLocked(),
		IsPlaying:    c.isPlaying,
		IsShuffled:   c.isShuffled,
		IsRepeating:  c.isRepeating,
		Volume:       c.volume,
		Position:     c.position,
		Duration:     c.duration,
	}
	if c.loaded != nil {
		track := *c.loaded
		state.CurrentTrack = &track
	}
	return state
}

func (c *PlayerController) statusLocked() domain.PlaybackStatus {
	switch {
	case c.loaded == nil:
		return domain.StatusIdle
	case c.isPlaying:
		return domain.StatusPlaying
	default:
		return domain.StatusPaused
	}
}

// failLocked surfaces a media failure and leaves the player paused.
func (c *PlayerController) failLocked(err error) {
	c.isPlaying = false
	c.view.SetPlayPauseAffordance(false)

	var track domain.Track
	if c.loaded != nil {
		track = *c.loaded
	}
	message := "Playback error"
	var mediaErr *domain.MediaError
	if errors.As(err, &mediaErr) {
		message = "Playback error: " + mediaErr.Message
	}
	c.view.ShowPlaybackError(message)

	c.logger.Warn("playback error",
		slog.Int("track_id", track.ID),
		slog.String("url", track.MediaURL),
		slog.Any("error", err))
	c.bus.Publish(domain.NewPlaybackErrorEvent(track, err))
}

// Media event handlers. Events for a handle other than the loaded one are stale.

func (c *PlayerController) onMediaLoaded(event domain.Event) {
	e, ok := event.(domain.MediaLoadedEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(e.Handle, event.Type()) {
		return
	}
	c.duration = e.Duration
	c.view.UpdateTimeDisplay(c.position, c.duration)
}

func (c *PlayerController) onMediaProgress(event domain.Event) {
	e, ok := event.(domain.MediaProgressEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(e.Handle, event.Type()) {
		return
	}
	c.position = e.Position
	if e.Duration > 0 {
		c.duration = e.Duration
	}
	c.view.UpdateTimeDisplay(c.position, c.duration)
}

func (c *PlayerController) onMediaEnded(event domain.Event) {
	e, ok := event.(domain.MediaEndedEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(e.Handle, event.Type()) {
		return
	}
	c.trackEndedLocked()
}

func (c *PlayerController) onMediaFailed(event domain.Event) {
	e, ok := event.(domain.MediaFailedEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(e.Handle, event.Type()) {
		return
	}
	c.failLocked(e.Err)
}

func (c *PlayerController) isCurrentLocked(handle domain.MediaHandle, eventType domain.EventType) bool {
	if handle == domain.InvalidMediaHandle || handle != c.handle {
		c.logger.Debug("stale media event dropped",
			slog.String("event_type", string(eventType)),
			slog.Int64("handle", int64(handle)),
			slog.Int64("current", int64(c.handle)))
		return false
	}
	return true
}

// Shutdown unsubscribes from media events and pauses playback.
func (c *PlayerController) Shutdown() {
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = nil
	c.pauseLocked()
}

type nopView struct{}

func (nopView) RenderList([]domain.Track, int)       {}
func (nopView) HighlightActive(int)                  {}
func (nopView) ShowNowPlaying(domain.Track)          {}
func (nopView) SetPlayPauseAffordance(bool)          {}
func (nopView) SetShuffleAffordance(bool)            {}
func (nopView) SetRepeatAffordance(bool)             {}
func (nopView) SetVolumeLevel(float64)               {}
func (nopView) UpdateTimeDisplay(_, _ time.Duration) {}
func (nopView) ShowPlaybackError(string)             {}

var _ PreferenceTarget = (*PlayerController)(nil)
