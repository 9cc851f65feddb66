// Package ports define the EventBus interface for event-driven communication.
// Media backends and the player controller talk to the rest of the system through it.
package ports

import (
	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// Media backends publish what their playback clock reports (loaded, progress, ended,
// failed). The PlayerController subscribes to those and publishes its own transitions,
// which the preference service and the UIs consume.
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In a media backend: report the end of a source
//	bus.Publish(domain.NewMediaEndedEvent(handle))
//
//	// In the controller: react to it
//	subID := bus.Subscribe(domain.EventMediaEnded, func(event domain.Event) {
//	    e := event.(domain.MediaEndedEvent)
//	    c.handleEnded(e.Handle)
//	})
//
//	// Later: Unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of that event type.
	// Handlers run synchronously on the publishing goroutine, in subscription order.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type and
	// returns an id for Unsubscribe.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler.
	// Unknown or already removed ids are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives every event.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anything listens for the given event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions. Publishing after Close is a no-op.
	Close() error
}
