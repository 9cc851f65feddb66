package web

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// RemoteMedia is a ports.MediaBackend whose output is the browser's <audio>
// element. Commands go to the primary browser only; it reports
// back loaded metadata, progress, end of track and errors, which are published
// on the event bus tagged with the handle they refer to.
//
// Position and duration are answered from the last report.
type RemoteMedia struct {
	logger  *slog.Logger
	bus     ports.EventBus
	out     PrimarySender
	resolve func(string) string

	mu       sync.Mutex
	handle   domain.MediaHandle
	url      string
	playing  bool
	position time.Duration
	duration time.Duration
	known    bool
	volume   float64
	closed   bool
}

// NewRemoteMedia creates the backend. resolve maps a catalog media URL to one
// the browser can fetch; nil keeps URLs unchanged.
func NewRemoteMedia(logger *slog.Logger, bus ports.EventBus, out PrimarySender, resolve func(string) string) *RemoteMedia {
	if resolve == nil {
		resolve = func(u string) string { return u }
	}
	return &RemoteMedia{
		logger:  logger.With("component", "web-media"),
		bus:     bus,
		out:     out,
		resolve: resolve,
		volume:  domain.DefaultVolume,
	}
}

func (m *RemoteMedia) send(t MessageType, payload any) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		m.logger.Warn("failed to build media command", slog.String("type", string(t)), slog.Any("error", err))
		return
	}
	m.out.SendPrimary(msg)
}

// current validates h. Must be called with m.mu held.
func (m *RemoteMedia) current(op string, h domain.MediaHandle) error {
	switch {
	case m.closed:
		return domain.NewMediaError(op, "", "backend closed", domain.ErrMediaUnavailable)
	case m.handle == domain.InvalidMediaHandle:
		return domain.ErrNoTrackLoaded
	case h != m.handle:
		return domain.ErrStaleHandle
	}
	return nil
}

// Load tells the primary browser to open url, paused at 0.
func (m *RemoteMedia) Load(url string) (domain.MediaHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.InvalidMediaHandle, domain.NewMediaError("load", url, "backend closed", domain.ErrMediaUnavailable)
	}
	m.handle++
	m.url = url
	m.playing = false
	m.position = 0
	m.duration = 0
	m.known = false

	m.send(MsgMediaLoad, mediaPayload{Handle: m.handle, URL: m.resolve(url)})
	return m.handle, nil
}

// Play starts playback of the loaded source.
func (m *RemoteMedia) Play(h domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current("play", h); err != nil {
		return err
	}
	m.playing = true
	m.send(MsgMediaPlay, mediaPayload{Handle: h})
	return nil
}

// Pause pauses playback; the position is kept.
func (m *RemoteMedia) Pause(h domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current("pause", h); err != nil {
		return err
	}
	m.playing = false
	m.send(MsgMediaPause, mediaPayload{Handle: h})
	return nil
}

// SetPosition seeks. Positions past a known duration are rejected.
func (m *RemoteMedia) SetPosition(h domain.MediaHandle, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current("seek", h); err != nil {
		return err
	}
	if position < 0 || (m.known && position > m.duration) {
		return domain.NewMediaError("seek", m.url, "position out of range", domain.ErrInvalidSeek)
	}
	m.position = position
	pos := seconds(position)
	m.send(MsgMediaSeek, mediaPayload{Handle: h, Position: &pos})
	return nil
}

// Position returns the last reported playback position.
func (m *RemoteMedia) Position(h domain.MediaHandle) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.current("position", h); err != nil {
		return 0, err
	}
	return m.position, nil
}

// Duration returns the reported duration, false while it is unknown.
func (m *RemoteMedia) Duration(h domain.MediaHandle) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current("duration", h) != nil || !m.known {
		return 0, false
	}
	return m.duration, true
}

// SetVolume sets the output volume in [0,1].
func (m *RemoteMedia) SetVolume(volume float64) error {
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 1")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = volume
	m.send(MsgMediaVolume, volumePayload{Volume: volume})
	return nil
}

// Close rejects further commands. Browsers stay connected.
func (m *RemoteMedia) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.playing = false
	return nil
}

type mediaCommand struct {
	t       MessageType
	payload any
}

// Sync brings a browser that just became the primary up to date with the
// loaded source. Nothing is sent when c is not the primary.
func (m *RemoteMedia) Sync(c *Client) {
	m.mu.Lock()
	commands := []mediaCommand{{MsgMediaVolume, volumePayload{Volume: m.volume}}}
	if m.handle != domain.InvalidMediaHandle && !m.closed {
		pos := seconds(m.position)
		commands = append(commands, mediaCommand{MsgMediaLoad, mediaPayload{Handle: m.handle, URL: m.resolve(m.url), Position: &pos}})
		if m.playing {
			commands = append(commands, mediaCommand{MsgMediaPlay, mediaPayload{Handle: m.handle}})
		}
	}
	m.mu.Unlock()

	for _, cmd := range commands {
		msg, err := NewMessage(cmd.t, cmd.payload)
		if err != nil {
			continue
		}
		c.sendIfPrimary(msg)
	}
}

// HandleReport applies a media report from the browser and publishes the
// matching media event. It reports whether msg was a media report.
func (m *RemoteMedia) HandleReport(msg Message) bool {
	switch msg.Type {
	case MsgMediaLoaded, MsgMediaProgress, MsgMediaEnded, MsgMediaError:
	default:
		return false
	}

	var p mediaPayload
	if err := msg.Decode(&p); err != nil {
		m.logger.Warn("invalid media report", slog.String("type", string(msg.Type)), slog.Any("error", err))
		return true
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return true
	}
	isCurrent := p.Handle == m.handle
	url := m.url
	if isCurrent {
		m.applyLocked(msg.Type, p)
	}
	m.mu.Unlock()

	// Published outside the lock; the controller drops stale handles.
	switch msg.Type {
	case MsgMediaLoaded:
		m.bus.Publish(domain.NewMediaLoadedEvent(p.Handle, durationOf(p)))
	case MsgMediaProgress:
		m.bus.Publish(domain.NewMediaProgressEvent(p.Handle, positionOf(p), durationOf(p)))
	case MsgMediaEnded:
		m.bus.Publish(domain.NewMediaEndedEvent(p.Handle))
	case MsgMediaError:
		m.bus.Publish(domain.NewMediaFailedEvent(p.Handle, domain.NewMediaError("play", url, p.Message, nil)))
	}
	return true
}

func (m *RemoteMedia) applyLocked(t MessageType, p mediaPayload) {
	if d := durationOf(p); d > 0 {
		m.duration = d
		m.known = true
	}
	switch t {
	case MsgMediaProgress:
		m.position = positionOf(p)
	case MsgMediaEnded:
		m.playing = false
		if m.known {
			m.position = m.duration
		}
	case MsgMediaError:
		m.playing = false
	}
}

// durationOf returns 0 for unknown durations (missing, NaN or infinite streams).
func durationOf(p mediaPayload) time.Duration {
	if p.Duration == nil || math.IsNaN(*p.Duration) || math.IsInf(*p.Duration, 0) || *p.Duration <= 0 {
		return 0
	}
	return fromSeconds(*p.Duration)
}

func positionOf(p mediaPayload) time.Duration {
	if p.Position == nil || math.IsNaN(*p.Position) || *p.Position < 0 {
		return 0
	}
	return fromSeconds(*p.Position)
}

var _ ports.MediaBackend = (*RemoteMedia)(nil)
