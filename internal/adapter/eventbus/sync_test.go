package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/testutil"
)

func sampleTrack() domain.Track {
	return domain.Track{ID: 7, Title: "Test Track", Artist: "Tester", MediaURL: "test.mp3"}
}

// TestNewSyncEventBus tests event bus creation.
func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus(nil)

	if bus == nil {
		t.Fatal("NewSyncEventBus returned nil")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if bus.closed {
		t.Error("New event bus should not be closed")
	}
}

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var received domain.Event
	var callCount int

	subID := bus.Subscribe(domain.EventPlaybackStarted, func(event domain.Event) {
		received = event
		callCount++
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewPlaybackStartedEvent(sampleTrack()))

	if callCount != 1 {
		t.Fatalf("Expected handler to be called once, got %d", callCount)
	}
	started, ok := received.(domain.PlaybackStartedEvent)
	if !ok {
		t.Fatalf("Expected PlaybackStartedEvent, got %T", received)
	}
	if started.Track.ID != 7 {
		t.Errorf("Expected track ID 7, got %d", started.Track.ID)
	}
}

// TestPublishOnlyMatchingType tests that handlers only see their own event type.
func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var ended int32
	bus.Subscribe(domain.EventMediaEnded, func(domain.Event) {
		atomic.AddInt32(&ended, 1)
	})

	bus.Publish(domain.NewMediaProgressEvent(1, time.Second, 10*time.Second))
	bus.Publish(domain.NewMediaEndedEvent(1))

	if got := atomic.LoadInt32(&ended); got != 1 {
		t.Errorf("Expected 1 ended delivery, got %d", got)
	}
}

// TestDeliveryOrder tests that handlers run in subscription order.
func TestDeliveryOrder(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var order []int
	for i := 1; i <= 3; i++ {
		bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {
			order = append(order, i)
		})
	}
	bus.SubscribeAll(func(domain.Event) {
		order = append(order, 99)
	})

	bus.Publish(domain.NewVolumeChangedEvent(0.5))

	want := []int{1, 2, 3, 99}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

// TestUnsubscribe tests unsubscribing handlers.
func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var callCount int32
	subID := bus.Subscribe(domain.EventShuffleToggled, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	bus.Publish(domain.NewShuffleToggledEvent(true))
	bus.Unsubscribe(subID)
	bus.Publish(domain.NewShuffleToggledEvent(false))

	if got := atomic.LoadInt32(&callCount); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
	if bus.HasSubscribers(domain.EventShuffleToggled) {
		t.Error("Expected no subscribers after unsubscribe")
	}
}

// TestUnsubscribeInvalidID tests unsubscribing with invalid ID (should be no-op).
func TestUnsubscribeInvalidID(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	bus.Subscribe(domain.EventRepeatToggled, func(domain.Event) {})
	bus.Unsubscribe("invalid-id")
	bus.Unsubscribe("")

	if bus.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}
}

// TestUnsubscribeWildcard tests removing a SubscribeAll handler.
func TestUnsubscribeWildcard(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var count int32
	id := bus.SubscribeAll(func(domain.Event) { atomic.AddInt32(&count, 1) })
	bus.Publish(domain.NewCatalogReplacedEvent(3))
	bus.Unsubscribe(id)
	bus.Publish(domain.NewCatalogReplacedEvent(3))

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
}

// TestUnsubscribeDuringPublish tests that a handler can remove itself while being delivered.
func TestUnsubscribeDuringPublish(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var first, second int32
	var id domain.SubscriptionID
	id = bus.Subscribe(domain.EventMediaEnded, func(domain.Event) {
		atomic.AddInt32(&first, 1)
		bus.Unsubscribe(id)
	})
	bus.Subscribe(domain.EventMediaEnded, func(domain.Event) {
		atomic.AddInt32(&second, 1)
	})

	bus.Publish(domain.NewMediaEndedEvent(1))
	bus.Publish(domain.NewMediaEndedEvent(1))

	if atomic.LoadInt32(&first) != 1 {
		t.Errorf("Expected self-removing handler to run once, got %d", first)
	}
	if atomic.LoadInt32(&second) != 2 {
		t.Errorf("Expected second handler to run twice, got %d", second)
	}
}

// TestHandlerPanicIsolated tests that a panicking handler does not stop delivery.
func TestHandlerPanicIsolated(t *testing.T) {
	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var delivered int32
	bus.Subscribe(domain.EventPlaybackError, func(domain.Event) {
		panic("boom")
	})
	bus.Subscribe(domain.EventPlaybackError, func(domain.Event) {
		atomic.AddInt32(&delivered, 1)
	})

	bus.Publish(domain.NewPlaybackErrorEvent(sampleTrack(), errors.New("network")))

	if atomic.LoadInt32(&delivered) != 1 {
		t.Error("Expected second handler to run after a panic")
	}
}

// TestClose tests closing semantics.
func TestClose(t *testing.T) {
	bus := NewSyncEventBus(nil)

	var count int32
	bus.Subscribe(domain.EventTrackSelected, func(domain.Event) { atomic.AddInt32(&count, 1) })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := bus.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on second close, got %v", err)
	}

	bus.Publish(domain.NewTrackSelectedEvent(sampleTrack(), 0))
	if atomic.LoadInt32(&count) != 0 {
		t.Error("Expected no delivery after close")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Subscribe on closed bus to panic")
		}
	}()
	bus.Subscribe(domain.EventTrackSelected, func(domain.Event) {})
}

// TestConcurrentPublish tests publishing from several goroutines, as media backends do.
func TestConcurrentPublish(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := NewSyncEventBus(nil)
	defer bus.Close()

	var count int64
	bus.Subscribe(domain.EventMediaProgress, func(domain.Event) {
		atomic.AddInt64(&count, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(domain.NewMediaProgressEvent(1, time.Duration(j)*time.Millisecond, time.Second))
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&count); got != 1000 {
		t.Errorf("Expected 1000 deliveries, got %d", got)
	}
}
