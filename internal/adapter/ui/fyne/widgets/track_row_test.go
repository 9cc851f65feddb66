package widgets

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

func TestTrackRow_Taps(t *testing.T) {
	test.NewTempApp(t)

	var tapped, played []int
	row := NewTrackRow(
		func(i int) { tapped = append(tapped, i) },
		func(i int) { played = append(played, i) },
	)

	// Unbound rows ignore taps
	test.Tap(row)
	assert.Empty(t, tapped)

	row.SetTrack(3, domain.Track{ID: 9, Title: "Alpha", Artist: "Ann"})
	title, artist := row.Text()
	assert.Equal(t, "Alpha", title)
	assert.Equal(t, "Ann", artist)
	assert.Equal(t, 3, row.Index())

	test.Tap(row)
	test.DoubleTap(row)
	assert.Equal(t, []int{3}, tapped)
	assert.Equal(t, []int{3}, played)
}

func TestTrackRow_NilCallbacks(t *testing.T) {
	test.NewTempApp(t)

	row := NewTrackRow(nil, nil)
	row.SetTrack(0, domain.Track{Title: "Solo"})
	assert.NotPanics(t, func() {
		test.Tap(row)
		test.DoubleTap(row)
	})
}
