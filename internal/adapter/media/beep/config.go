// Package beep plays catalog media on the local sound card through gopxl/beep.
//
// Sources are opened and decoded in the background: Load returns a handle at once
// and the backend later publishes MediaLoadedEvent or MediaFailedEvent for it.
// Playback position is reported on a ticker, and MediaEndedEvent is published when
// a stream runs out. Builds without cgo on Linux get a backend that always fails
// with domain.ErrMediaUnavailable.
package beep

import (
	"net/http"
	"time"
)

// Config tunes the speaker and the progress reporting.
type Config struct {
	SampleRate       int
	BufferSize       time.Duration
	ProgressInterval time.Duration

	// Client fetches http(s) sources. Defaults to a client with a 60s timeout.
	Client *http.Client
}

// DefaultConfig returns CD-quality output with a 100ms buffer.
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		BufferSize:       100 * time.Millisecond,
		ProgressInterval: 250 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 60 * time.Second}
	}
	return c
}
