//go:build (linux && cgo) || windows || darwin

package beep

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gobeep "github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-saab2006/music--app/internal/adapter/eventbus"
	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
	"github.com/Chauhan-saab2006/music--app/internal/testutil"
)

// These tests stay away from Play so they run on machines without a sound card.

type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) record(e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) find(t domain.EventType) (domain.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.Type() == t {
			return e, true
		}
	}
	return nil, false
}

func newTestBackend(t *testing.T) (*Backend, *eventLog) {
	t.Helper()
	bus := eventbus.NewSyncEventBus(nil)
	log := &eventLog{}
	bus.SubscribeAll(log.record)

	b := NewBackend(logger.NewTestLogger(), bus, Config{ProgressInterval: 10 * time.Millisecond})
	t.Cleanup(func() {
		_ = b.Close()
		_ = bus.Close()
	})
	return b, log
}

// writeSilence writes a mono 8kHz wav file of the given length.
func writeSilence(t *testing.T, path string, length time.Duration) {
	t.Helper()
	format := gobeep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, gobeep.Silence(format.SampleRate.N(length)), format))
}

func waitFor(t *testing.T, log *eventLog, eventType domain.EventType) domain.Event {
	t.Helper()
	var event domain.Event
	require.Eventually(t, func() bool {
		var ok bool
		event, ok = log.find(eventType)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	return event
}

func TestBackend_LoadLocalWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeSilence(t, path, 2*time.Second)
	b, log := newTestBackend(t)

	h, err := b.Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, domain.InvalidMediaHandle, h)

	loaded := waitFor(t, log, domain.EventMediaLoaded).(domain.MediaLoadedEvent)
	assert.Equal(t, h, loaded.Handle)
	assert.Equal(t, 2*time.Second, loaded.Duration)

	d, ok := b.Duration(h)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	require.NoError(t, b.SetPosition(h, time.Second))
	pos, err := b.Position(h)
	require.NoError(t, err)
	assert.Equal(t, time.Second, pos)

	assert.ErrorIs(t, b.SetPosition(h, 3*time.Second), domain.ErrInvalidSeek)
	require.NoError(t, b.Pause(h))
}

func TestBackend_LoadOverHTTP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeSilence(t, path, time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}))
	defer srv.Close()

	b, log := newTestBackend(t)
	h, err := b.Load(srv.URL + "/songs/tone.wav")
	require.NoError(t, err)

	loaded := waitFor(t, log, domain.EventMediaLoaded).(domain.MediaLoadedEvent)
	assert.Equal(t, h, loaded.Handle)
	assert.Equal(t, time.Second, loaded.Duration)
}

func TestBackend_LoadFailures(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.mp3") }},
		{"unsupported format", func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "notes.txt")
			require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))
			return p
		}},
		{"corrupt wav", func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "broken.wav")
			require.NoError(t, os.WriteFile(p, []byte("not a wav file"), 0o644))
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, log := newTestBackend(t)
			h, err := b.Load(tt.source(t))
			require.NoError(t, err)

			failed := waitFor(t, log, domain.EventMediaFailed).(domain.MediaFailedEvent)
			assert.Equal(t, h, failed.Handle)
			var mediaErr *domain.MediaError
			assert.ErrorAs(t, failed.Err, &mediaErr)

			_, ok := b.Duration(h)
			assert.False(t, ok)
		})
	}
}

func TestBackend_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	b, log := newTestBackend(t)
	_, err := b.Load(srv.URL + "/gone.mp3")
	require.NoError(t, err)
	waitFor(t, log, domain.EventMediaFailed)
}

func TestBackend_HandleChecks(t *testing.T) {
	b, _ := newTestBackend(t)

	assert.ErrorIs(t, b.Play(1), domain.ErrNoTrackLoaded)

	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "a.wav"), time.Second)
	h1, err := b.Load(filepath.Join(dir, "a.wav"))
	require.NoError(t, err)
	h2, err := b.Load(filepath.Join(dir, "a.wav"))
	require.NoError(t, err)

	assert.Greater(t, h2, h1)
	assert.ErrorIs(t, b.Pause(h1), domain.ErrStaleHandle)
	_, err = b.Position(h1)
	assert.ErrorIs(t, err, domain.ErrStaleHandle)
}

func TestBackend_SetVolume(t *testing.T) {
	b, _ := newTestBackend(t)

	require.NoError(t, b.SetVolume(0.5))
	var validation *domain.ValidationError
	assert.ErrorAs(t, b.SetVolume(1.2), &validation)
	assert.Error(t, b.SetVolume(-0.1))
}

func TestApplyLevel(t *testing.T) {
	v := &effects.Volume{Base: 2}

	applyLevel(v, 1)
	assert.False(t, v.Silent)
	assert.InDelta(t, 0, v.Volume, 0.0001)

	applyLevel(v, 0.5)
	assert.InDelta(t, -1, v.Volume, 0.0001)

	applyLevel(v, 0)
	assert.True(t, v.Silent)
}

func TestBackend_CloseStopsBackgroundWork(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()
	b := NewBackend(nil, bus, Config{})

	path := filepath.Join(t.TempDir(), "a.wav")
	writeSilence(t, path, time.Second)
	_, err := b.Load(path)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err = b.Load(path)
	assert.ErrorIs(t, err, domain.ErrMediaUnavailable)
}
