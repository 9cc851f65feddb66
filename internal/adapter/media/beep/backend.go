//go:build (linux && cgo) || windows || darwin

package beep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	gobeep "github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// Available indicates whether local playback is supported in this build.
const Available = true

// Backend is a ports.MediaBackend on top of the beep speaker.
// All operations are thread-safe via sync.Mutex.
type Backend struct {
	logger *slog.Logger
	bus    ports.EventBus
	cfg    Config

	mu          sync.Mutex
	initialized bool
	closed      bool
	level       float64

	handle     domain.MediaHandle
	url        string
	cancelLoad context.CancelFunc
	wantPlay   bool

	// Set once the current source is decoded
	streamer gobeep.StreamSeekCloser
	format   gobeep.Format
	ctrl     *gobeep.Ctrl
	volume   *effects.Volume
	attached bool // the chain is queued on the speaker

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBackend creates the backend and starts its progress reporter.
// The speaker is opened on first playback.
func NewBackend(logger *slog.Logger, bus ports.EventBus, cfg Config) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Backend{
		logger: logger.With("component", "media-beep"),
		bus:    bus,
		cfg:    cfg.withDefaults(),
		level:  domain.DefaultVolume,
		stop:   make(chan struct{}),
	}

	b.wg.Add(1)
	go b.reportProgress()
	return b
}

// Load replaces the current source. Decoding happens in the background.
func (b *Backend) Load(mediaURL string) (domain.MediaHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return domain.InvalidMediaHandle, domain.NewMediaError("load", mediaURL, "backend closed", domain.ErrMediaUnavailable)
	}

	b.releaseLocked()
	b.handle++
	b.url = mediaURL
	b.wantPlay = false

	ctx, cancel := context.WithCancel(context.Background())
	b.cancelLoad = cancel

	h := b.handle
	b.wg.Add(1)
	go b.open(ctx, h, mediaURL)

	b.logger.Debug("loading media", slog.Int64("handle", int64(h)), slog.String("url", mediaURL))
	return h, nil
}

func (b *Backend) open(ctx context.Context, h domain.MediaHandle, mediaURL string) {
	defer b.wg.Done()

	streamer, format, err := b.decode(ctx, mediaURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		b.logger.Warn("failed to open media", slog.String("url", mediaURL), slog.Any("error", err))
		b.bus.Publish(domain.NewMediaFailedEvent(h, domain.NewMediaError("load", mediaURL, err.Error(), err)))
		return
	}

	b.mu.Lock()
	if b.closed || h != b.handle {
		b.mu.Unlock()
		_ = streamer.Close()
		return
	}
	b.streamer = streamer
	b.format = format
	duration := format.SampleRate.D(streamer.Len())

	var playErr error
	if b.wantPlay {
		playErr = b.resumeLocked()
	}
	b.mu.Unlock()

	b.bus.Publish(domain.NewMediaLoadedEvent(h, duration))
	if playErr != nil {
		b.bus.Publish(domain.NewMediaFailedEvent(h, playErr))
	}
}

func (b *Backend) decode(ctx context.Context, mediaURL string) (gobeep.StreamSeekCloser, gobeep.Format, error) {
	rc, name, err := b.openSource(ctx, mediaURL)
	if err != nil {
		return nil, gobeep.Format{}, err
	}

	var (
		streamer gobeep.StreamSeekCloser
		format   gobeep.Format
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(rc)
	case ".wav":
		streamer, format, err = wav.Decode(rc)
	case ".flac":
		streamer, format, err = flac.Decode(rc)
	case ".ogg":
		streamer, format, err = vorbis.Decode(rc)
	default:
		_ = rc.Close()
		return nil, gobeep.Format{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
	if err != nil {
		_ = rc.Close()
		return nil, gobeep.Format{}, err
	}
	return streamer, format, nil
}

// openSource returns a seekable reader for a local path or an http(s) URL along
// with the name used to pick a decoder.
func (b *Backend) openSource(ctx context.Context, mediaURL string) (io.ReadCloser, string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f, err := os.Open(strings.TrimPrefix(mediaURL, "file://"))
		if err != nil {
			return nil, "", err
		}
		return f, mediaURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := b.cfg.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	// Decoders seek, so the body is buffered in memory.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return nopCloser{bytes.NewReader(data)}, u.Path, nil
}

// current validates h. Must be called with b.mu held.
func (b *Backend) current(op string, h domain.MediaHandle) error {
	switch {
	case b.closed:
		return domain.NewMediaError(op, "", "backend closed", domain.ErrMediaUnavailable)
	case b.handle == domain.InvalidMediaHandle:
		return domain.ErrNoTrackLoaded
	case h != b.handle:
		return domain.ErrStaleHandle
	}
	return nil
}

// Play starts or resumes playback. A source still being decoded starts when ready.
func (b *Backend) Play(h domain.MediaHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.current("play", h); err != nil {
		return err
	}
	b.wantPlay = true
	if b.streamer == nil {
		return nil
	}
	return b.resumeLocked()
}

func (b *Backend) resumeLocked() error {
	if err := b.initSpeakerLocked(); err != nil {
		return domain.NewMediaError("play", b.url, "audio output unavailable", err)
	}
	if !b.attached {
		b.attachLocked()
	}
	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (b *Backend) initSpeakerLocked() error {
	if b.initialized {
		return nil
	}
	rate := gobeep.SampleRate(b.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(b.cfg.BufferSize)); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

// attachLocked queues a fresh chain for the current streamer on the speaker.
func (b *Backend) attachLocked() {
	h := b.handle
	resampled := gobeep.Resample(4, b.format.SampleRate, gobeep.SampleRate(b.cfg.SampleRate), b.streamer)
	b.ctrl = &gobeep.Ctrl{Streamer: resampled, Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2}
	applyLevel(b.volume, b.level)
	b.attached = true

	speaker.Play(gobeep.Seq(b.volume, gobeep.Callback(func() {
		// Runs under the speaker lock.
		go b.finished(h)
	})))
}

func (b *Backend) finished(h domain.MediaHandle) {
	b.mu.Lock()
	if h != b.handle || b.closed {
		b.mu.Unlock()
		return
	}
	b.attached = false
	b.wantPlay = false
	b.mu.Unlock()

	b.bus.Publish(domain.NewMediaEndedEvent(h))
}

// Pause halts playback, keeping the position.
func (b *Backend) Pause(h domain.MediaHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.current("pause", h); err != nil {
		return err
	}
	b.wantPlay = false
	if b.ctrl != nil && b.initialized {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

// SetPosition seeks within the current source.
func (b *Backend) SetPosition(h domain.MediaHandle, position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.current("seek", h); err != nil {
		return err
	}
	if b.streamer == nil {
		return domain.NewMediaError("seek", b.url, "media not ready", domain.ErrDurationUnknown)
	}

	samples := b.format.SampleRate.N(position)
	if samples < 0 || samples > b.streamer.Len() {
		return domain.NewMediaError("seek", b.url, fmt.Sprintf("position %v out of range", position), domain.ErrInvalidSeek)
	}

	speaker.Lock()
	err := b.streamer.Seek(samples)
	speaker.Unlock()
	if err != nil {
		return domain.NewMediaError("seek", b.url, err.Error(), err)
	}
	return nil
}

// Position returns the playback position of the current source.
func (b *Backend) Position(h domain.MediaHandle) (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.current("position", h); err != nil {
		return 0, err
	}
	return b.positionLocked(), nil
}

func (b *Backend) positionLocked() time.Duration {
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(pos)
}

// Duration returns the length of the current source once it is decoded.
func (b *Backend) Duration(h domain.MediaHandle) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current("duration", h) != nil || b.streamer == nil {
		return 0, false
	}
	return b.format.SampleRate.D(b.streamer.Len()), true
}

// SetVolume sets the output level in [0,1].
func (b *Backend) SetVolume(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return domain.NewValidationError("volume", level, "must be between 0 and 1")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.level = level
	if b.volume != nil {
		speaker.Lock()
		applyLevel(b.volume, level)
		speaker.Unlock()
	}
	return nil
}

// applyLevel maps a linear level onto the exponential beep volume effect.
func applyLevel(v *effects.Volume, level float64) {
	v.Silent = level <= 0
	if level > 0 {
		v.Volume = math.Log2(level)
	}
}

func (b *Backend) reportProgress() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.mu.Lock()
			if !b.attached || !b.wantPlay || b.streamer == nil {
				b.mu.Unlock()
				continue
			}
			h := b.handle
			pos := b.positionLocked()
			duration := b.format.SampleRate.D(b.streamer.Len())
			b.mu.Unlock()

			b.bus.Publish(domain.NewMediaProgressEvent(h, pos, duration))
		}
	}
}

// releaseLocked stops and closes the current source.
func (b *Backend) releaseLocked() {
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
	if b.initialized {
		speaker.Clear()
	}
	if b.streamer != nil {
		_ = b.streamer.Close()
	}
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
	b.attached = false
}

// Close stops playback, waits for background work and releases the speaker.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.releaseLocked()
	initialized := b.initialized
	b.mu.Unlock()

	close(b.stop)
	b.wg.Wait()
	b.cfg.Client.CloseIdleConnections()

	if initialized {
		speaker.Close()
	}
	b.logger.Debug("media backend closed")
	return nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

var _ ports.MediaBackend = (*Backend)(nil)
