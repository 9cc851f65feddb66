package service

import (
	"log/slog"
	"sync"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// PreferenceTarget receives restored preferences. PlayerController satisfies it.
type PreferenceTarget interface {
	SetVolume(level float64)
	SetShuffle(enabled bool)
	SetRepeat(enabled bool)
}

// PreferenceService restores volume, shuffle and repeat at start and saves them
// whenever the player announces a change. Playback position is never persisted.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	prefs domain.Preferences
	mu    sync.RWMutex
	subs  []domain.SubscriptionID
}

// NewPreferenceService creates a new preference service and loads saved preferences.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	s := &PreferenceService{
		logger:     logger.With("component", "preferences"),
		repository: repository,
		bus:        bus,
		prefs:      domain.DefaultPreferences(),
	}

	if prefs, err := repository.Load(); err != nil {
		s.logger.Warn("failed to load preferences, using defaults", slog.Any("error", err))
	} else {
		s.prefs = prefs
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVolumeChanged, s.handleVolumeChanged),
		bus.Subscribe(domain.EventShuffleToggled, s.handleShuffleToggled),
		bus.Subscribe(domain.EventRepeatToggled, s.handleRepeatToggled),
	}

	s.logger.Debug("preference service initialized",
		slog.Float64("volume", s.prefs.Volume),
		slog.Bool("shuffle", s.prefs.Shuffle),
		slog.Bool("repeat", s.prefs.Repeat))
	return s
}

// Preferences returns the cached preferences.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Apply pushes the cached preferences into target.
func (s *PreferenceService) Apply(target PreferenceTarget) {
	prefs := s.Preferences()
	target.SetVolume(prefs.Volume * 100)
	target.SetShuffle(prefs.Shuffle)
	target.SetRepeat(prefs.Repeat)
}

// ResetToDefaults clears the repository and the cache.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.prefs = domain.DefaultPreferences()
	s.mu.Unlock()

	return s.repository.Clear()
}

func (s *PreferenceService) handleVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	changed := s.prefs.Volume != e.Volume
	s.prefs.Volume = e.Volume
	s.mu.Unlock()

	if !changed {
		return
	}
	if err := s.repository.SaveVolume(e.Volume); err != nil {
		s.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

func (s *PreferenceService) handleShuffleToggled(event domain.Event) {
	e, ok := event.(domain.ShuffleToggledEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	s.prefs.Shuffle = e.Enabled
	s.mu.Unlock()

	if err := s.repository.SaveShuffle(e.Enabled); err != nil {
		s.logger.Warn("failed to save shuffle mode", slog.Any("error", err))
	}
}

func (s *PreferenceService) handleRepeatToggled(event domain.Event) {
	e, ok := event.(domain.RepeatToggledEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	s.prefs.Repeat = e.Enabled
	s.mu.Unlock()

	if err := s.repository.SaveRepeat(e.Enabled); err != nil {
		s.logger.Warn("failed to save repeat mode", slog.Any("error", err))
	}
}

// Shutdown stops listening for changes.
func (s *PreferenceService) Shutdown() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
}
