package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/adapter/eventbus"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/media/mock"
	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
)

// recordingView records what the controller renders.
type recordingView struct {
	mu sync.Mutex
	viewState
}

type viewState struct {
	calls       []string
	list        []domain.Track
	listActive  int
	highlighted int
	nowPlaying  domain.Track
	playing     bool
	shuffle     bool
	repeat      bool
	volume      float64
	current     time.Duration
	total       time.Duration
	errMessage  string
}

func newRecordingView() *recordingView {
	return &recordingView{viewState: viewState{listActive: domain.NoIndex, highlighted: domain.NoIndex}}
}

func (v *recordingView) record(format string, args ...any) {
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *recordingView) RenderList(tracks []domain.Track, activeIndex int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("list %d %d", len(tracks), activeIndex)
	v.list = tracks
	v.listActive = activeIndex
}

func (v *recordingView) HighlightActive(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("highlight %d", index)
	v.highlighted = index
}

func (v *recordingView) ShowNowPlaying(track domain.Track) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("now %d", track.ID)
	v.nowPlaying = track
}

func (v *recordingView) SetPlayPauseAffordance(isPlaying bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = isPlaying
}

func (v *recordingView) SetShuffleAffordance(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shuffle = enabled
}

func (v *recordingView) SetRepeatAffordance(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.repeat = enabled
}

func (v *recordingView) SetVolumeLevel(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *recordingView) UpdateTimeDisplay(current, total time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = current
	v.total = total
}

func (v *recordingView) ShowPlaybackError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("error %s", message)
	v.errMessage = message
}

func (v *recordingView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := v.viewState
	state.calls = append([]string(nil), v.calls...)
	return state
}

type controllerFixture struct {
	controller *PlayerController
	media      *mock.Backend
	view       *recordingView
	bus        *eventbus.SyncEventBus
}

// Helper to create a started controller over tracks.
func newTestController(tracks []domain.Track, opts ...PlaylistOption) *controllerFixture {
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	media := mock.NewBackend(log, bus)
	view := newRecordingView()
	controller := NewPlayerController(log, NewPlaylistState(tracks, opts...), media, view, bus)
	controller.Start()
	return &controllerFixture{controller: controller, media: media, view: view, bus: bus}
}

func (f *controllerFixture) close() {
	f.controller.Shutdown()
	_ = f.bus.Close()
}
