// Package mock provides a scriptable MediaBackend for tests and for running without audio output.
package mock

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// DefaultDuration is the length reported for every loaded source unless changed.
const DefaultDuration = 3 * time.Minute

// Backend is an in-memory MediaBackend.
// It never produces sound; tests drive its playback clock with the Simulate methods,
// which publish the same events a real backend would.
type Backend struct {
	logger *slog.Logger
	bus    ports.EventBus

	handle   domain.MediaHandle
	url      string
	playing  bool
	position time.Duration
	duration time.Duration
	known    bool
	volume   float64
	closed   bool

	calls []string

	// Behavior switches
	failLoad      bool
	failPlay      bool
	failSeek      bool
	unknownLength bool
	length        time.Duration

	mu sync.Mutex
}

// NewBackend creates a mock backend that reports on bus.
func NewBackend(logger *slog.Logger, bus ports.EventBus) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		logger: logger.With("component", "media.mock"),
		bus:    bus,
		volume: 1.0,
		length: DefaultDuration,
	}
}

// SetFailLoad makes subsequent Load calls fail.
func (m *Backend) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay makes subsequent Play calls fail.
func (m *Backend) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetFailSeek makes subsequent SetPosition calls fail.
func (m *Backend) SetFailSeek(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSeek = fail
}

// SetDurationUnknown keeps the duration unknown after Load until SimulateLoaded is called.
func (m *Backend) SetDurationUnknown(unknown bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknownLength = unknown
}

// SetDuration changes the length reported for sources loaded afterwards.
func (m *Backend) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.length = d
}

func (m *Backend) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *Backend) current(handle domain.MediaHandle) error {
	if m.closed {
		return domain.ErrMediaUnavailable
	}
	if m.handle == domain.InvalidMediaHandle {
		return domain.ErrNoTrackLoaded
	}
	if handle != m.handle {
		return domain.ErrStaleHandle
	}
	return nil
}

// Load replaces the current source.
func (m *Backend) Load(url string) (domain.MediaHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("load %s", url)
	if m.closed {
		return domain.InvalidMediaHandle, domain.ErrMediaUnavailable
	}
	if m.failLoad || url == "" {
		m.playing = false
		return domain.InvalidMediaHandle, domain.NewMediaError("load", url, "mock load failed", nil)
	}

	m.handle++
	m.url = url
	m.playing = false
	m.position = 0
	m.duration = 0
	m.known = false
	if !m.unknownLength {
		m.duration = m.length
		m.known = true
	}
	m.logger.Debug("source loaded", slog.String("url", url), slog.Int64("handle", int64(m.handle)))
	return m.handle, nil
}

// Play starts playback.
func (m *Backend) Play(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("play %d", handle)
	if err := m.current(handle); err != nil {
		return err
	}
	if m.failPlay {
		return domain.NewMediaError("play", m.url, "mock play failed", nil)
	}
	m.playing = true
	return nil
}

// Pause pauses playback.
func (m *Backend) Pause(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("pause %d", handle)
	if err := m.current(handle); err != nil {
		return err
	}
	m.playing = false
	return nil
}

// SetPosition moves the playback position.
func (m *Backend) SetPosition(handle domain.MediaHandle, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("seek %d %s", handle, position)
	if err := m.current(handle); err != nil {
		return err
	}
	if m.failSeek {
		return domain.NewMediaError("seek", m.url, "mock seek failed", nil)
	}
	if position < 0 || (m.known && position > m.duration) {
		return domain.NewMediaError("seek", m.url, "position out of range", nil)
	}
	m.position = position
	return nil
}

// Position returns the playback position.
func (m *Backend) Position(handle domain.MediaHandle) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current(handle); err != nil {
		return 0, err
	}
	return m.position, nil
}

// Duration returns the source length once known.
func (m *Backend) Duration(handle domain.MediaHandle) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current(handle) != nil || !m.known {
		return 0, false
	}
	return m.duration, true
}

// SetVolume sets the output level.
func (m *Backend) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("volume %.2f", volume)
	if volume < 0 || volume > 1 {
		return domain.NewMediaError("volume", "", "volume out of range", nil)
	}
	m.volume = volume
	return nil
}

// Close stops playback.
func (m *Backend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.playing = false
	m.closed = true
	return nil
}

// SimulateLoaded marks the duration as known and publishes MediaLoadedEvent.
func (m *Backend) SimulateLoaded(duration time.Duration) {
	m.mu.Lock()
	handle := m.handle
	m.duration = duration
	m.known = true
	m.mu.Unlock()

	m.bus.Publish(domain.NewMediaLoadedEvent(handle, duration))
}

// SimulateProgress advances the clock to position and publishes MediaProgressEvent.
// Reaching the end publishes MediaEndedEvent as well.
func (m *Backend) SimulateProgress(position time.Duration) {
	m.mu.Lock()
	handle := m.handle
	duration := m.duration
	known := m.known
	m.position = position
	ended := known && position >= duration
	if ended {
		m.position = duration
		m.playing = false
	}
	m.mu.Unlock()

	if !known {
		duration = 0
	}
	m.bus.Publish(domain.NewMediaProgressEvent(handle, position, duration))
	if ended {
		m.bus.Publish(domain.NewMediaEndedEvent(handle))
	}
}

// SimulateEnded publishes MediaEndedEvent for the current source.
func (m *Backend) SimulateEnded() {
	m.SimulateEndedFor(m.Handle())
}

// SimulateEndedFor publishes MediaEndedEvent for an arbitrary handle, e.g. a stale one.
func (m *Backend) SimulateEndedFor(handle domain.MediaHandle) {
	m.mu.Lock()
	if handle == m.handle {
		m.playing = false
		m.position = m.duration
	}
	m.mu.Unlock()

	m.bus.Publish(domain.NewMediaEndedEvent(handle))
}

// SimulateFailure publishes MediaFailedEvent for the current source.
func (m *Backend) SimulateFailure(err error) {
	m.mu.Lock()
	handle := m.handle
	m.playing = false
	m.mu.Unlock()

	m.bus.Publish(domain.NewMediaFailedEvent(handle, err))
}

// Handle returns the current handle.
func (m *Backend) Handle() domain.MediaHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// URL returns the loaded source.
func (m *Backend) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

// IsPlaying reports whether the mock clock is running.
func (m *Backend) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Volume returns the output level.
func (m *Backend) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Calls returns the recorded method calls in order.
func (m *Backend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ResetCalls clears the call log.
func (m *Backend) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify that Backend implements the MediaBackend interface
var _ ports.MediaBackend = (*Backend)(nil)
