// Package service provides the player logic for tunedeck.
package service

import (
	"math/rand/v2"
	"strings"

	"github.com/samber/lo"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// PlaylistState owns the catalog, the active search term, the filtered view derived
// from them, and the current index into the filtered view.
//
// PlaylistState is not safe for concurrent use. PlayerController owns one and
// serializes every access under its own lock.
type PlaylistState struct {
	catalog  []domain.Track
	filtered []domain.Track
	term     string
	current  int

	// randomIndex returns a uniform index in [0,n)
	randomIndex func(n int) int
}

// PlaylistOption configures a PlaylistState.
type PlaylistOption func(*PlaylistState)

// WithRandomIndex replaces the shuffle source. Tests use it to make shuffle deterministic.
func WithRandomIndex(fn func(n int) int) PlaylistOption {
	return func(p *PlaylistState) {
		p.randomIndex = fn
	}
}

// NewPlaylistState creates a playlist over the given catalog.
func NewPlaylistState(tracks []domain.Track, opts ...PlaylistOption) *PlaylistState {
	p := &PlaylistState{randomIndex: rand.IntN}
	for _, opt := range opts {
		opt(p)
	}
	p.SetCatalog(tracks)
	return p
}

// SetCatalog replaces the catalog, clears the search term and resets the current index.
func (p *PlaylistState) SetCatalog(tracks []domain.Track) {
	p.catalog = append([]domain.Track(nil), tracks...)
	p.term = ""
	p.filtered = p.catalog
	p.resetIndex()
}

// ApplySearch filters the catalog on title or artist, case-insensitively, and
// resets the current index. An empty term shows the whole catalog.
func (p *PlaylistState) ApplySearch(term string) {
	p.term = term
	if term == "" {
		p.filtered = p.catalog
	} else {
		needle := strings.ToLower(term)
		p.filtered = lo.Filter(p.catalog, func(t domain.Track, _ int) bool {
			return strings.Contains(strings.ToLower(t.Title), needle) ||
				strings.Contains(strings.ToLower(t.Artist), needle)
		})
	}
	p.resetIndex()
}

func (p *PlaylistState) resetIndex() {
	if len(p.filtered) == 0 {
		p.current = domain.NoIndex
		return
	}
	p.current = 0
}

// NextIndex returns the index after the current one, wrapping around, or a
// uniformly random index when shuffled. It does not move the current index.
func (p *PlaylistState) NextIndex(shuffled bool) (int, error) {
	n := len(p.filtered)
	if n == 0 {
		return domain.NoIndex, domain.ErrEmptyPlaylist
	}
	if shuffled {
		return p.randomIndex(n), nil
	}
	return (p.current + 1) % n, nil
}

// PrevIndex returns the index before the current one, wrapping around.
// Shuffle never applies to it.
func (p *PlaylistState) PrevIndex() (int, error) {
	n := len(p.filtered)
	if n == 0 {
		return domain.NoIndex, domain.ErrEmptyPlaylist
	}
	return (p.current - 1 + n) % n, nil
}

// TrackAt returns the track at index in the filtered view.
func (p *PlaylistState) TrackAt(index int) (domain.Track, error) {
	if index < 0 || index >= len(p.filtered) {
		return domain.Track{}, domain.ErrIndexOutOfRange
	}
	return p.filtered[index], nil
}

// Select makes index the current index.
func (p *PlaylistState) Select(index int) error {
	if index < 0 || index >= len(p.filtered) {
		return domain.ErrIndexOutOfRange
	}
	p.current = index
	return nil
}

// CurrentIndex returns the current index, or domain.NoIndex when the view is empty.
func (p *PlaylistState) CurrentIndex() int {
	return p.current
}

// Len returns the length of the filtered view.
func (p *PlaylistState) Len() int {
	return len(p.filtered)
}

// IsEmpty reports whether the filtered view has no tracks.
func (p *PlaylistState) IsEmpty() bool {
	return len(p.filtered) == 0
}

// SearchTerm returns the active search term.
func (p *PlaylistState) SearchTerm() string {
	return p.term
}

// Filtered returns a copy of the filtered view.
func (p *PlaylistState) Filtered() []domain.Track {
	out := make([]domain.Track, len(p.filtered))
	copy(out, p.filtered)
	return out
}

// Catalog returns a copy of the full catalog.
func (p *PlaylistState) Catalog() []domain.Track {
	out := make([]domain.Track, len(p.catalog))
	copy(out, p.catalog)
	return out
}
