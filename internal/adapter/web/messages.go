package web

import (
	"encoding/json"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// MessageType names a websocket message.
type MessageType string

const (
	// View updates (server -> browser)
	MsgList      MessageType = "list"
	MsgHighlight MessageType = "highlight"
	MsgNow       MessageType = "nowPlaying"
	MsgPlayPause MessageType = "playPause"
	MsgShuffle   MessageType = "shuffle"
	MsgRepeat    MessageType = "repeat"
	MsgVolume    MessageType = "volume"
	MsgTime      MessageType = "time"
	MsgError     MessageType = "error"

	// Media commands (server -> browser audio element)
	MsgMediaLoad   MessageType = "media.load"
	MsgMediaPlay   MessageType = "media.play"
	MsgMediaPause  MessageType = "media.pause"
	MsgMediaSeek   MessageType = "media.seek"
	MsgMediaVolume MessageType = "media.volume"

	// Media reports (browser -> server)
	MsgMediaLoaded   MessageType = "media.loaded"
	MsgMediaProgress MessageType = "media.progress"
	MsgMediaEnded    MessageType = "media.ended"
	MsgMediaError    MessageType = "media.error"

	// User intents (browser -> server). Volume, shuffle and repeat reuse the
	// names of the matching view updates.
	IntentSelect    MessageType = "select"
	IntentPlayTrack MessageType = "playTrack"
	IntentToggle    MessageType = "toggle"
	IntentPlay      MessageType = "play"
	IntentPause     MessageType = "pause"
	IntentNext      MessageType = "next"
	IntentPrev      MessageType = "prev"
	IntentSeek      MessageType = "seek"
	IntentVolume    MessageType = "volume"
	IntentSearch    MessageType = "search"
	IntentShuffle   MessageType = "shuffle"
	IntentRepeat    MessageType = "repeat"
	IntentKey       MessageType = "key"

	MsgPing MessageType = "ping"
	MsgPong MessageType = "pong"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage builds a message with a JSON encoded payload. A nil payload sends no data.
func NewMessage(t MessageType, payload any) (Message, error) {
	msg := Message{Type: t, Timestamp: time.Now().UnixMilli()}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Data = data
	return msg, nil
}

// Decode unmarshals the payload into v. Messages without data leave v untouched.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

type listPayload struct {
	Tracks      []domain.Track `json:"tracks"`
	ActiveIndex int            `json:"activeIndex"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type trackPayload struct {
	Track domain.Track `json:"track"`
}

type enabledPayload struct {
	Enabled bool `json:"enabled"`
}

// togglePayload leaves Enabled nil to flip the current setting.
type togglePayload struct {
	Enabled *bool `json:"enabled"`
}

type playPausePayload struct {
	IsPlaying bool `json:"isPlaying"`
}

type volumePayload struct {
	// Volume is 0..1 in server messages and 0..100 in volume intents.
	Volume float64 `json:"volume"`
}

type timePayload struct {
	Current     float64 `json:"current"`
	Total       float64 `json:"total"`
	CurrentText string  `json:"currentText"`
	TotalText   string  `json:"totalText"`
	Progress    float64 `json:"progress"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type searchPayload struct {
	Term string `json:"term"`
}

type seekPayload struct {
	Fraction float64 `json:"fraction"`
}

type keyPayload struct {
	Key string `json:"key"`
}

// mediaPayload is shared by media commands and media reports. Times are seconds.
type mediaPayload struct {
	Handle   domain.MediaHandle `json:"handle"`
	URL      string             `json:"url,omitempty"`
	Position *float64           `json:"position,omitempty"`
	Duration *float64           `json:"duration,omitempty"`
	Message  string             `json:"message,omitempty"`
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
