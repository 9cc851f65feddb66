package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-saab2006/music--app/internal/adapter/eventbus"
	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
)

// Mock preferences repository for testing
type mockPreferencesRepository struct {
	mu       sync.RWMutex
	prefs    domain.Preferences
	saves    int
	failLoad bool
	failSave bool
}

func newMockPreferencesRepository() *mockPreferencesRepository {
	return &mockPreferencesRepository{prefs: domain.DefaultPreferences()}
}

func (m *mockPreferencesRepository) Load() (domain.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failLoad {
		return domain.Preferences{}, errors.New("corrupt preferences")
	}
	return m.prefs, nil
}

func (m *mockPreferencesRepository) save(apply func(*domain.Preferences)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	apply(&m.prefs)
	m.saves++
	return nil
}

func (m *mockPreferencesRepository) SaveVolume(volume float64) error {
	return m.save(func(p *domain.Preferences) { p.Volume = volume })
}

func (m *mockPreferencesRepository) SaveShuffle(enabled bool) error {
	return m.save(func(p *domain.Preferences) { p.Shuffle = enabled })
}

func (m *mockPreferencesRepository) SaveRepeat(enabled bool) error {
	return m.save(func(p *domain.Preferences) { p.Repeat = enabled })
}

func (m *mockPreferencesRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = domain.DefaultPreferences()
	return nil
}

func (m *mockPreferencesRepository) snapshot() (domain.Preferences, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs, m.saves
}

func TestPreferenceService_LoadsSavedPreferences(t *testing.T) {
	repo := newMockPreferencesRepository()
	repo.prefs = domain.Preferences{Volume: 0.3, Shuffle: true}
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()

	s := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	defer s.Shutdown()

	assert.Equal(t, domain.Preferences{Volume: 0.3, Shuffle: true}, s.Preferences())
}

func TestPreferenceService_LoadFailureUsesDefaults(t *testing.T) {
	repo := newMockPreferencesRepository()
	repo.failLoad = true
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()

	s := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	defer s.Shutdown()

	assert.Equal(t, domain.DefaultPreferences(), s.Preferences())
}

func TestPreferenceService_ApplyRestoresIntoController(t *testing.T) {
	f := newTestController(abcCatalog())
	defer f.close()

	repo := newMockPreferencesRepository()
	repo.prefs = domain.Preferences{Volume: 0.4, Shuffle: true, Repeat: true}
	s := NewPreferenceService(logger.NewTestLogger(), repo, f.bus)
	defer s.Shutdown()

	s.Apply(f.controller)

	state := f.controller.State()
	assert.InDelta(t, 0.4, state.Volume, 0.0001)
	assert.True(t, state.IsShuffled)
	assert.True(t, state.IsRepeating)

	view := f.view.snapshot()
	assert.True(t, view.shuffle)
	assert.True(t, view.repeat)
}

func TestPreferenceService_SavesOnChange(t *testing.T) {
	f := newTestController(abcCatalog())
	defer f.close()

	repo := newMockPreferencesRepository()
	s := NewPreferenceService(logger.NewTestLogger(), repo, f.bus)
	defer s.Shutdown()

	f.controller.SetVolume(35)
	f.controller.ToggleShuffle()
	f.controller.ToggleRepeat()

	saved, _ := repo.snapshot()
	assert.InDelta(t, 0.35, saved.Volume, 0.0001)
	assert.True(t, saved.Shuffle)
	assert.True(t, saved.Repeat)
	assert.Equal(t, saved, s.Preferences())
}

func TestPreferenceService_SkipsUnchangedVolume(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()
	repo := newMockPreferencesRepository()
	s := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	defer s.Shutdown()

	bus.Publish(domain.NewVolumeChangedEvent(domain.DefaultVolume))
	_, saves := repo.snapshot()
	assert.Equal(t, 0, saves)
}

func TestPreferenceService_SaveFailureIsLogged(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()
	repo := newMockPreferencesRepository()
	repo.failSave = true
	s := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	defer s.Shutdown()

	bus.Publish(domain.NewShuffleToggledEvent(true))
	assert.True(t, s.Preferences().Shuffle, "cache follows the player even when saving fails")
}

func TestPreferenceService_ResetAndShutdown(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()
	repo := newMockPreferencesRepository()
	s := NewPreferenceService(logger.NewTestLogger(), repo, bus)

	bus.Publish(domain.NewRepeatToggledEvent(true))
	require.NoError(t, s.ResetToDefaults())
	assert.Equal(t, domain.DefaultPreferences(), s.Preferences())

	s.Shutdown()
	bus.Publish(domain.NewRepeatToggledEvent(true))
	saved, _ := repo.snapshot()
	assert.False(t, saved.Repeat)
	assert.Equal(t, 0, bus.SubscriberCount())
}
