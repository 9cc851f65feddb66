package fyne

import (
	"net/url"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

const (
	// WIDTH and HEIGHT are the initial window size.
	WIDTH  = 720
	HEIGHT = 520

	coverSize = 180
)

// MainWindow is the main UI window implementing the UIView interface.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All behavior lives in the controller, reached through the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	shuffleButton  *widget.Button
	repeatButton   *widget.Button
	titleLabel     *widget.Label
	artistLabel    *widget.Label
	errorLabel     *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider
	cover          *canvas.Image
	playlist       *PlaylistPanel

	title    string
	coverURL string

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, title string) *MainWindow {
	w := &MainWindow{app: app, title: title}

	w.window = app.NewWindow(title)
	w.buildUI()
	w.window.Resize(fyneapp.NewSize(WIDTH, HEIGHT))
	w.window.Canvas().SetOnTypedKey(w.typedKey)

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.playlist.SetPresenter(presenter)
	w.wirePresenterHandlers()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.cover = canvas.NewImageFromResource(theme.MediaMusicIcon())
	w.cover.FillMode = canvas.ImageFillContain
	w.cover.SetMinSize(fyneapp.NewSize(coverSize, coverSize))

	w.titleLabel = widget.NewLabel("")
	w.titleLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.titleLabel.TextStyle = fyneapp.TextStyle{Bold: true}
	w.artistLabel = widget.NewLabel("")
	w.artistLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.errorLabel = widget.NewLabel("")
	w.errorLabel.Importance = widget.DangerImportance
	w.errorLabel.Wrapping = fyneapp.TextWrapWord
	w.errorLabel.Hide()

	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.shuffleButton = widget.NewButton("Shuffle", nil)
	w.repeatButton = widget.NewButtonWithIcon("Repeat", theme.MediaReplayIcon(), nil)
	w.SetShuffleState(false)
	w.SetRepeatState(false)

	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Step = 1
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)

	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.001
	w.currentTime = widget.NewLabel(domain.FormatClock(0))
	w.endTime = widget.NewLabel(domain.FormatClock(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	buttons := container.NewHBox(w.prevButton, w.playButton, w.nextButton, w.shuffleButton, w.repeatButton)
	info := container.NewVBox(w.titleLabel, w.artistLabel, w.errorLabel)
	nowPlaying := container.NewBorder(nil, nil, w.cover, nil, info)
	controls := container.NewVBox(sliderHolder, container.NewBorder(nil, nil, buttons, nil, volumeHolder))

	w.playlist = NewPlaylistPanel()
	content := container.NewBorder(nowPlaying, controls, nil, nil, w.playlist.Content())
	w.window.SetContent(container.NewPadded(content))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.nextButton.OnTapped = w.presenter.OnNextClicked
	w.prevButton.OnTapped = w.presenter.OnPreviousClicked
	w.shuffleButton.OnTapped = w.presenter.OnShuffleClicked
	w.repeatButton.OnTapped = w.presenter.OnRepeatClicked

	// Programmatic updates set Value directly, so these only fire for user input.
	w.volumeSlider.OnChanged = w.presenter.OnVolumeChanged
	w.progressSlider.OnChangeEnded = w.presenter.OnSeekRequested
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open Catalog...", w.handleOpenCatalog)
	openFolder := fyneapp.NewMenuItem("Open Folder...", w.handleOpenFolder)
	exit := fyneapp.NewMenuItem("Exit", w.Close)
	exit.IsQuit = true

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openFile, openFolder, fyneapp.NewMenuItemSeparator(), exit),
	}
}

func (w *MainWindow) handleOpenCatalog() {
	if w.presenter == nil {
		return
	}
	NewCatalogDialog(w.window, w.presenter.OnCatalogOpened, w.presenter.logger).Show()
}

func (w *MainWindow) handleOpenFolder() {
	if w.presenter == nil {
		return
	}
	NewFolderDialog(w.window, w.presenter.OnCatalogOpened, w.presenter.logger).Show()
}

// typedKey handles keys typed while no entry has focus.
func (w *MainWindow) typedKey(ev *fyneapp.KeyEvent) {
	if w.presenter != nil {
		w.presenter.OnKey(ev.Name)
	}
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// SetOnClosed registers fn to run when the window closes.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}

// Close closes the window. It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

func (w *MainWindow) SetTrackList(tracks []domain.Track, active int) {
	w.playlist.SetTracks(tracks, active)
}

func (w *MainWindow) SetActive(index int) {
	w.playlist.SetActive(index)
}

// SetTrackInfo shows the track and clears a previous playback error.
func (w *MainWindow) SetTrackInfo(track domain.Track) {
	w.titleLabel.SetText(track.Title)
	w.artistLabel.SetText(track.Artist)
	w.errorLabel.Hide()
	w.window.SetTitle(w.title + " | " + track.DisplayName())
	w.setCover(track.CoverURL)
}

// setCover shows a local file directly and fetches remote images off the main goroutine.
func (w *MainWindow) setCover(coverURL string) {
	w.coverURL = coverURL
	w.cover.File = ""
	w.cover.Resource = theme.MediaMusicIcon()
	w.cover.Image = nil

	u, err := url.Parse(coverURL)
	switch {
	case coverURL == "" || err != nil:
	case u.Scheme == "http" || u.Scheme == "https":
		go func() {
			res, err := fyneapp.LoadResourceFromURLString(coverURL)
			if err != nil {
				return
			}
			fyneapp.Do(func() {
				if w.coverURL != coverURL {
					return
				}
				w.cover.Resource = res
				w.cover.Refresh()
			})
		}()
	default:
		w.cover.Resource = nil
		w.cover.File = coverURL
	}
	w.cover.Refresh()
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	if playing {
		w.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		w.playButton.SetIcon(theme.MediaPlayIcon())
	}
}

func (w *MainWindow) SetShuffleState(enabled bool) {
	w.shuffleButton.Importance = toggleImportance(enabled)
	w.shuffleButton.Refresh()
}

func (w *MainWindow) SetRepeatState(enabled bool) {
	w.repeatButton.Importance = toggleImportance(enabled)
	w.repeatButton.Refresh()
}

func toggleImportance(enabled bool) widget.Importance {
	if enabled {
		return widget.HighImportance
	}
	return widget.MediumImportance
}

// SetVolume updates the volume slider without firing OnChanged.
func (w *MainWindow) SetVolume(level float64) {
	w.volumeSlider.Value = level
	w.volumeSlider.Refresh()
}

// SetTime updates the clock labels and the progress slider.
func (w *MainWindow) SetTime(current, total time.Duration) {
	w.currentTime.SetText(domain.FormatClock(current))
	w.endTime.SetText(domain.FormatClock(total))

	progress := 0.0
	if total > 0 {
		progress = min(max(float64(current)/float64(total), 0), 1)
	}
	w.progressSlider.Value = progress
	w.progressSlider.Refresh()
}

func (w *MainWindow) ShowError(message string) {
	w.errorLabel.SetText(message)
	w.errorLabel.Show()
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
