// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus already closed")

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered on the publishing goroutine, in subscription order.
//
// Media backends publish from their own goroutines (speaker callbacks, websocket
// readers), so the bus is safe for concurrent Publish/Subscribe/Unsubscribe.
// A handler may subscribe or unsubscribe while an event is being delivered;
// the change applies from the next Publish.
type SyncEventBus struct {
	logger *slog.Logger

	// subscribers map event types to their subscriptions
	subscribers map[domain.EventType][]subscription

	// wildcard subscriptions receive every event
	wildcard []subscription

	// owner maps a subscription to its event type; wildcard ones map to ""
	owner map[domain.SubscriptionID]domain.EventType

	mu     sync.RWMutex
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger discards the bus' own diagnostics.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncEventBus{
		logger:      logger.With("component", "eventbus"),
		subscribers: make(map[domain.EventType][]subscription),
		owner:       make(map[domain.SubscriptionID]domain.EventType),
	}
}

// Publish delivers an event to the subscribers of its type, then to wildcard subscribers.
//
// If the event bus is closed, this method does nothing. A panicking handler is
// recovered and logged; the remaining handlers still run.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := append([]subscription(nil), bus.subscribers[event.Type()]...)
	wildcard := append([]subscription(nil), bus.wildcard...)
	bus.mu.RUnlock()

	for _, sub := range typed {
		bus.deliver(sub, event)
	}
	for _, sub := range wildcard {
		bus.deliver(sub, event)
	}
}

func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// The same handler can be registered multiple times with different IDs.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.nextID))
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})
	bus.owner[id] = eventType
	return id
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-all-%d", bus.nextID))
	bus.wildcard = append(bus.wildcard, subscription{id: id, handler: handler})
	bus.owner[id] = ""
	return id
}

// Unsubscribe removes a previously registered event handler.
// Remaining handlers keep their relative order.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	eventType, ok := bus.owner[id]
	if !ok {
		return
	}
	delete(bus.owner, id)

	if eventType == "" {
		bus.wildcard = without(bus.wildcard, id)
		return
	}
	subs := without(bus.subscribers[eventType], id)
	if len(subs) == 0 {
		delete(bus.subscribers, eventType)
		return
	}
	bus.subscribers[eventType] = subs
}

// without returns a fresh slice so snapshots taken by Publish stay valid.
func without(subs []subscription, id domain.SubscriptionID) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.id != id {
			out = append(out, sub)
		}
	}
	return out
}

// HasSubscribers returns true if a handler would receive an event of the given type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[eventType]) > 0 || len(bus.wildcard) > 0
}

// Close shuts down the event bus and clears all subscriptions.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.wildcard = nil
	bus.owner = make(map[domain.SubscriptionID]domain.EventType)
	return nil
}

// SubscriberCount returns the number of active subscriptions, wildcard ones included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.owner)
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
