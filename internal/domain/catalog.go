package domain

import (
	"fmt"
	"time"
)

var demoCoverColors = []string{"667eea", "764ba2", "ff6b6b"}

// DemoCatalog returns the built-in sample catalog used when no catalog source is configured.
func DemoCatalog() []Track {
	tracks := make([]Track, 0, len(demoCoverColors))
	for i, color := range demoCoverColors {
		n := i + 1
		tracks = append(tracks, Track{
			ID:       n,
			Title:    fmt.Sprintf("Sample Song %d", n),
			Artist:   "Sample Artist",
			CoverURL: fmt.Sprintf("https://via.placeholder.com/300x300/%s/ffffff?text=Song+%d", color, n),
			MediaURL: fmt.Sprintf("https://www.soundhelix.com/examples/mp3/SoundHelix-Song-%d.mp3", n),
		})
	}
	return tracks
}

// ValidateCatalog checks that every track has a unique id, a title and a media URL.
func ValidateCatalog(tracks []Track) error {
	seen := make(map[int]struct{}, len(tracks))
	for i, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			return NewValidationError(fmt.Sprintf("tracks[%d].id", i), t.ID, "duplicate track id")
		}
		seen[t.ID] = struct{}{}
		if t.Title == "" {
			return NewValidationError(fmt.Sprintf("tracks[%d].title", i), t.Title, "title is required")
		}
		if t.MediaURL == "" {
			return NewValidationError(fmt.Sprintf("tracks[%d].mediaUrl", i), t.MediaURL, "media url is required")
		}
	}
	return nil
}

// FormatClock renders a duration as M:SS. Negative durations render as 0:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
