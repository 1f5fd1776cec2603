package game

import (
	"testing"
	"time"
)

func newTestBus() *Bus {
	return NewBus(NewManualClock(time.Unix(1000, 0)), NewSimLog(false))
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := newTestBus()
	var order []int
	for i := 0; i < 4; i++ {
		n := i
		bus.Subscribe(EventMovementStarted, func(Event) {
			order = append(order, n)
		})
	}
	bus.Publish(EventMovementStarted, nil)
	if len(order) != 4 {
		t.Fatalf("expected 4 deliveries, got %d", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatalf("handlers ran out of registration order: %v", order)
		}
	}
}

func TestBus_ReentrantPublish(t *testing.T) {
	bus := newTestBus()
	var depths []int
	bus.Subscribe(EventMovementStarted, func(Event) {
		depths = append(depths, bus.Depth())
		bus.Publish(EventAnimationCompleted, nil)
	})
	bus.Subscribe(EventAnimationCompleted, func(Event) {
		depths = append(depths, bus.Depth())
	})

	bus.Publish(EventMovementStarted, nil)

	if len(depths) != 2 || depths[0] != 1 || depths[1] != 2 {
		t.Fatalf("expected nested dispatch depths [1 2], got %v", depths)
	}
	if bus.Depth() != 0 {
		t.Fatalf("bus should be idle after publish, depth=%d", bus.Depth())
	}
}

func TestBus_IsolatedTopics(t *testing.T) {
	bus := newTestBus()
	called := false
	bus.Subscribe(EventMovementRejected, func(Event) { called = true })
	bus.Publish(EventMovementAdopted, nil)
	if called {
		t.Fatal("handler received an event from another topic")
	}
}

func TestBus_PayloadAndTimestamp(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	bus := NewBus(clock, NewSimLog(false))
	payload := &MovementRejectedPayload{EntityID: "e1", Reason: "blocked"}
	var got Event
	bus.Subscribe(EventMovementRejected, func(ev Event) { got = ev })

	clock.Advance(3 * time.Second)
	bus.Publish(EventMovementRejected, payload)

	if got.Payload != payload {
		t.Fatal("payload not delivered intact")
	}
	if !got.Timestamp.Equal(time.Unix(1003, 0)) {
		t.Fatalf("expected clock timestamp, got %v", got.Timestamp)
	}
}
