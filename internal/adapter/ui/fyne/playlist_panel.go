package fyne

import (
	"fmt"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Chauhan-saab2006/music--app/internal/adapter/ui/fyne/widgets"
	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// PlaylistPanel shows the filtered playlist with its search entry.
// The filtering itself happens in the controller; the panel only draws the
// list it is given and reports taps and search edits.
type PlaylistPanel struct {
	searchEntry *widget.Entry
	countLabel  *widget.Label
	list        *widget.List
	content     fyneapp.CanvasObject

	// Data state
	data   []domain.Track
	active int

	presenter *Presenter
}

// NewPlaylistPanel creates an empty panel.
func NewPlaylistPanel() *PlaylistPanel {
	p := &PlaylistPanel{active: domain.NoIndex}
	p.buildUI()
	return p
}

// buildUI constructs the panel layout.
func (p *PlaylistPanel) buildUI() {
	p.searchEntry = widget.NewEntry()
	p.searchEntry.SetPlaceHolder("Search title or artist...")

	p.countLabel = widget.NewLabel("")
	p.updateCount()

	p.list = widget.NewList(
		func() int {
			return len(p.data)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewTrackRow(p.onRowTapped, p.onRowDoubleTapped)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			p.updateRow(i, obj)
		},
	)

	top := container.NewBorder(nil, nil, nil, p.countLabel, p.searchEntry)
	p.content = container.NewBorder(top, nil, nil, nil, p.list)
}

// SetPresenter routes user input to presenter.
func (p *PlaylistPanel) SetPresenter(presenter *Presenter) {
	p.presenter = presenter
	p.searchEntry.OnChanged = presenter.OnSearchChanged
}

// Content returns the panel's root object.
func (p *PlaylistPanel) Content() fyneapp.CanvasObject {
	return p.content
}

func (p *PlaylistPanel) updateRow(i widget.ListItemID, obj fyneapp.CanvasObject) {
	row, ok := obj.(*widgets.TrackRow)
	if !ok || i < 0 || i >= len(p.data) {
		return
	}
	row.SetTrack(i, p.data[i])
}

func (p *PlaylistPanel) onRowTapped(index int) {
	if p.presenter != nil {
		p.presenter.OnTrackSelected(index)
	}
}

func (p *PlaylistPanel) onRowDoubleTapped(index int) {
	if p.presenter != nil {
		p.presenter.OnTrackActivated(index)
	}
}

// SetTracks replaces the shown list and highlights active.
func (p *PlaylistPanel) SetTracks(tracks []domain.Track, active int) {
	p.data = tracks
	p.updateCount()
	p.list.UnselectAll()
	p.list.Refresh()
	p.SetActive(active)
}

// SetActive highlights the row at index; NoIndex clears the highlight.
func (p *PlaylistPanel) SetActive(index int) {
	p.active = index
	if index < 0 || index >= len(p.data) {
		p.list.UnselectAll()
		return
	}
	// OnSelected is never set, so selecting here cannot loop back into the controller.
	p.list.Select(index)
	p.list.ScrollTo(index)
}

// Tracks returns the shown tracks.
func (p *PlaylistPanel) Tracks() []domain.Track {
	return p.data
}

// Active returns the highlighted index.
func (p *PlaylistPanel) Active() int {
	return p.active
}

func (p *PlaylistPanel) updateCount() {
	p.countLabel.SetText(fmt.Sprintf("%d tracks", len(p.data)))
}
