// Package widgets provides custom Fyne widgets for tunedeck.
package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

var (
	_ fyneapp.Tappable       = (*TrackRow)(nil)
	_ fyneapp.DoubleTappable = (*TrackRow)(nil)
)

// TrackRow is a playlist cell showing a track's title and artist.
// A single tap selects the row's track, a double tap plays it.
type TrackRow struct {
	widget.BaseWidget

	title  *widget.Label
	artist *widget.Label
	index  int

	tapped       func(index int)
	doubleTapped func(index int)
}

// NewTrackRow creates a row. Either callback may be nil.
func NewTrackRow(tapped, doubleTapped func(index int)) *TrackRow {
	row := &TrackRow{
		title:        widget.NewLabel(""),
		artist:       widget.NewLabel(""),
		index:        domain.NoIndex,
		tapped:       tapped,
		doubleTapped: doubleTapped,
	}
	row.title.Truncation = fyneapp.TextTruncateEllipsis
	row.title.TextStyle = fyneapp.TextStyle{Bold: true}
	row.artist.Truncation = fyneapp.TextTruncateEllipsis
	row.ExtendBaseWidget(row)
	return row
}

// CreateRenderer implements fyne.Widget.
func (r *TrackRow) CreateRenderer() fyneapp.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewGridWithColumns(2, r.title, r.artist))
}

// SetTrack binds the row to the track at index.
func (r *TrackRow) SetTrack(index int, track domain.Track) {
	r.index = index
	r.title.SetText(track.Title)
	r.artist.SetText(track.Artist)
}

// Index returns the bound list index.
func (r *TrackRow) Index() int {
	return r.index
}

// Text returns the displayed title and artist.
func (r *TrackRow) Text() (title, artist string) {
	return r.title.Text, r.artist.Text
}

// Tapped implements fyne.Tappable.
func (r *TrackRow) Tapped(*fyneapp.PointEvent) {
	if r.tapped != nil && r.index != domain.NoIndex {
		r.tapped(r.index)
	}
}

// DoubleTapped implements fyne.DoubleTappable.
func (r *TrackRow) DoubleTapped(*fyneapp.PointEvent) {
	if r.doubleTapped != nil && r.index != domain.NoIndex {
		r.doubleTapped(r.index)
	}
}
