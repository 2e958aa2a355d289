package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		t.Fatal("handler for another type must not fire")
		return nil
	})

	payload := BookingEventPayload{BookingID: 7, UserID: 3, Status: "pending"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &decoded))
	assert.EqualValues(t, 7, decoded.BookingID)
	assert.EqualValues(t, 3, decoded.UserID)
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(e *Event) error {
		calls++
		return nil
	}
	bus.Subscribe(EventUserRegistered, handler)
	bus.Subscribe(EventUserRegistered, handler)

	require.NoError(t, bus.PublishJSON(EventUserRegistered, map[string]any{"user_id": 1}))
	assert.Equal(t, 2, calls)
}

func TestEventBus_NilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON("unheard_of", map[string]int{"x": 1}))
}
