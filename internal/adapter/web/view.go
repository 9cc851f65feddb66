package web

import (
	"log/slog"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// View renders player state into every connected browser.
type View struct {
	logger *slog.Logger
	out    Broadcaster
}

// NewView creates a view that publishes through out.
func NewView(logger *slog.Logger, out Broadcaster) *View {
	return &View{logger: logger.With("component", "web-view"), out: out}
}

func (v *View) send(t MessageType, payload any) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		v.logger.Warn("failed to build message", slog.String("type", string(t)), slog.Any("error", err))
		return
	}
	v.out.Broadcast(msg)
}

func (v *View) RenderList(tracks []domain.Track, activeIndex int) {
	if tracks == nil {
		tracks = []domain.Track{}
	}
	v.send(MsgList, listPayload{Tracks: tracks, ActiveIndex: activeIndex})
}

func (v *View) HighlightActive(index int) {
	v.send(MsgHighlight, indexPayload{Index: index})
}

func (v *View) ShowNowPlaying(track domain.Track) {
	v.send(MsgNow, trackPayload{Track: track})
}

func (v *View) SetPlayPauseAffordance(isPlaying bool) {
	v.send(MsgPlayPause, playPausePayload{IsPlaying: isPlaying})
}

func (v *View) SetShuffleAffordance(enabled bool) {
	v.send(MsgShuffle, enabledPayload{Enabled: enabled})
}

func (v *View) SetRepeatAffordance(enabled bool) {
	v.send(MsgRepeat, enabledPayload{Enabled: enabled})
}

func (v *View) SetVolumeLevel(volume float64) {
	v.send(MsgVolume, volumePayload{Volume: volume})
}

func (v *View) UpdateTimeDisplay(current, total time.Duration) {
	progress := 0.0
	if total > 0 {
		progress = min(max(float64(current)/float64(total), 0), 1)
	}
	v.send(MsgTime, timePayload{
		Current:     seconds(current),
		Total:       seconds(total),
		CurrentText: domain.FormatClock(current),
		TotalText:   domain.FormatClock(total),
		Progress:    progress,
	})
}

func (v *View) ShowPlaybackError(message string) {
	v.send(MsgError, errorPayload{Message: message})
}

var _ ports.View = (*View)(nil)
