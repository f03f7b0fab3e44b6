package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := New()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{Image: "alpine:3.19", State: Fetching})

	select {
	case event := <-ch:
		assert.Equal(t, "alpine:3.19", event.Image)
		assert.Equal(t, Fetching, event.State)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestPublishWithNoSubscribersNeverBlocks(t *testing.T) {
	bus := New()
	bus.Publish(Event{Image: "alpine:3.19", State: Cached})
}

func TestPublishDropsOldestWhenSubscriberFull(t *testing.T) {
	bus := New()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(Event{Image: "alpine", State: Fetching, NewTag: string(rune('a' + i%26))})
	}

	require.Len(t, ch, subscriberBuffer)
	// The five oldest events (i = 0..4) were dropped, so i = 5 is first.
	first := <-ch
	assert.Equal(t, string(rune('a'+5)), first.NewTag)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
}
