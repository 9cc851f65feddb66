// Package fyne provides the desktop UI adapter built on the Fyne toolkit.
package fyne

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
	"github.com/Chauhan-saab2006/music--app/internal/service"
)

// Controller is the part of the player the desktop window drives.
type Controller interface {
	SelectTrack(index int) error
	PlayTrack(index int) error
	TogglePlayPause()
	Advance()
	Retreat()
	Seek(fraction float64) error
	SetVolume(level float64)
	SetSearchTerm(term string)
	ToggleShuffle()
	ToggleRepeat()
	HandleKey(key string) bool
}

// UIView defines the widget-level updates the presenter draws with.
// The actual UI implementation (MainWindow) must implement this interface.
// Its methods are only called on the Fyne main goroutine.
type UIView interface {
	// Playlist updates
	SetTrackList(tracks []domain.Track, active int)
	SetActive(index int)

	// Now playing
	SetTrackInfo(track domain.Track)
	SetPlayState(playing bool)
	SetShuffleState(enabled bool)
	SetRepeatState(enabled bool)

	// SetVolume takes a 0..100 level
	SetVolume(level float64)
	SetTime(current, total time.Duration)

	ShowError(message string)
	ShowNotification(title, message string)
}

// CatalogOpener replaces the playing catalog with the one found at path.
type CatalogOpener func(path string) error

// Presenter implements the Presenter pattern (MVP architecture).
//
// It is the ports.View of the player: the controller calls it while holding its
// own lock, so every update is handed to the Fyne main goroutine and never runs
// inline. User commands coming from the window are forwarded to the controller.
type Presenter struct {
	logger     *slog.Logger
	controller Controller
	view       UIView
	do         func(func())

	mu          sync.RWMutex
	openCatalog CatalogOpener
}

// NewPresenter creates a presenter drawing into view.
func NewPresenter(logger *slog.Logger, controller Controller, view UIView) *Presenter {
	return &Presenter{
		logger:     logger.With("component", "presenter"),
		controller: controller,
		view:       view,
		do:         fyneapp.Do,
	}
}

// SetCatalogOpener enables the "Open" menu entries.
func (p *Presenter) SetCatalogOpener(open CatalogOpener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openCatalog = open
}

// ports.View implementation

func (p *Presenter) RenderList(tracks []domain.Track, activeIndex int) {
	tracks = append([]domain.Track(nil), tracks...)
	p.do(func() { p.view.SetTrackList(tracks, activeIndex) })
}

func (p *Presenter) HighlightActive(index int) {
	p.do(func() { p.view.SetActive(index) })
}

func (p *Presenter) ShowNowPlaying(track domain.Track) {
	p.do(func() { p.view.SetTrackInfo(track) })
}

func (p *Presenter) SetPlayPauseAffordance(isPlaying bool) {
	p.do(func() { p.view.SetPlayState(isPlaying) })
}

func (p *Presenter) SetShuffleAffordance(enabled bool) {
	p.do(func() { p.view.SetShuffleState(enabled) })
}

func (p *Presenter) SetRepeatAffordance(enabled bool) {
	p.do(func() { p.view.SetRepeatState(enabled) })
}

func (p *Presenter) SetVolumeLevel(volume float64) {
	p.do(func() { p.view.SetVolume(volume * 100) })
}

func (p *Presenter) UpdateTimeDisplay(current, total time.Duration) {
	p.do(func() { p.view.SetTime(current, total) })
}

func (p *Presenter) ShowPlaybackError(message string) {
	p.do(func() { p.view.ShowError(message) })
}

// UI command handlers (called by UI)

// OnPlayClicked handles the play/pause button.
func (p *Presenter) OnPlayClicked() {
	p.controller.TogglePlayPause()
}

// OnNextClicked handles the next button.
func (p *Presenter) OnNextClicked() {
	p.controller.Advance()
}

// OnPreviousClicked handles the previous button.
func (p *Presenter) OnPreviousClicked() {
	p.controller.Retreat()
}

// OnShuffleClicked handles the shuffle button.
func (p *Presenter) OnShuffleClicked() {
	p.controller.ToggleShuffle()
}

// OnRepeatClicked handles the repeat button.
func (p *Presenter) OnRepeatClicked() {
	p.controller.ToggleRepeat()
}

// OnVolumeChanged handles volume slider changes (0..100).
func (p *Presenter) OnVolumeChanged(level float64) {
	p.controller.SetVolume(level)
}

// OnSeekRequested handles a seek on the progress slider (0..1).
func (p *Presenter) OnSeekRequested(fraction float64) {
	if err := p.controller.Seek(fraction); err != nil {
		p.logger.Debug("seek rejected", slog.Float64("fraction", fraction), slog.Any("error", err))
	}
}

// OnSearchChanged handles edits of the search entry.
func (p *Presenter) OnSearchChanged(term string) {
	p.controller.SetSearchTerm(term)
}

// OnTrackSelected handles a single tap on a playlist row.
func (p *Presenter) OnTrackSelected(index int) {
	if err := p.controller.SelectTrack(index); err != nil {
		p.logger.Error("select track failed", slog.Int("index", index), slog.Any("error", err))
	}
}

// OnTrackActivated handles a double tap on a playlist row.
func (p *Presenter) OnTrackActivated(index int) {
	if err := p.controller.PlayTrack(index); err != nil {
		p.logger.Error("play track failed", slog.Int("index", index), slog.Any("error", err))
	}
}

var keyNames = map[fyneapp.KeyName]string{
	fyneapp.KeySpace: service.KeySpace,
	fyneapp.KeyLeft:  service.KeyArrowLeft,
	fyneapp.KeyRight: service.KeyArrowRight,
	fyneapp.KeyUp:    service.KeyArrowUp,
	fyneapp.KeyDown:  service.KeyArrowDown,
}

// OnKey handles a key typed on the window canvas. It reports whether the key is bound.
func (p *Presenter) OnKey(name fyneapp.KeyName) bool {
	key, ok := keyNames[name]
	if !ok {
		return false
	}
	return p.controller.HandleKey(key)
}

// OnCatalogOpened loads a catalog file or music folder chosen in a dialog.
// The catalog is read off the main goroutine.
func (p *Presenter) OnCatalogOpened(path string) {
	p.mu.RLock()
	open := p.openCatalog
	p.mu.RUnlock()
	if open == nil {
		return
	}

	go func() {
		if err := open(path); err != nil {
			p.logger.Warn("open catalog failed", slog.String("path", path), slog.Any("error", err))
			p.do(func() {
				p.view.ShowNotification("Catalog Error", fmt.Sprintf("Failed to open %s: %v", path, err))
			})
		}
	}()
}

var _ ports.View = (*Presenter)(nil)
