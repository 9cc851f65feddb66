//go:build !((linux && cgo) || windows || darwin)

package beep

import (
	"log/slog"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// Available indicates whether local playback is supported in this build.
// The speaker needs cgo for the native sound libraries.
const Available = false

// Backend is a stand-in that refuses every operation.
type Backend struct{}

// NewBackend returns a backend without audio output.
func NewBackend(_ *slog.Logger, _ ports.EventBus, _ Config) *Backend {
	return &Backend{}
}

func unavailable(op string) error {
	return domain.NewMediaError(op, "", "built without audio support", domain.ErrMediaUnavailable)
}

func (b *Backend) Load(string) (domain.MediaHandle, error) {
	return domain.InvalidMediaHandle, unavailable("load")
}

func (b *Backend) Play(domain.MediaHandle) error  { return unavailable("play") }
func (b *Backend) Pause(domain.MediaHandle) error { return unavailable("pause") }

func (b *Backend) SetPosition(domain.MediaHandle, time.Duration) error { return unavailable("seek") }

func (b *Backend) Position(domain.MediaHandle) (time.Duration, error) {
	return 0, unavailable("position")
}

func (b *Backend) Duration(domain.MediaHandle) (time.Duration, bool) { return 0, false }

func (b *Backend) SetVolume(float64) error { return nil }

func (b *Backend) Close() error { return nil }

var _ ports.MediaBackend = (*Backend)(nil)
