package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, wishlistID uint) *Client {
	return &Client{
		Hub:        hub,
		WishlistID: wishlistID,
		Send:       make(chan []byte, 16),
	}
}

func waitForViewers(t *testing.T, hub *Hub, wishlistID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ViewerCount(wishlistID) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("wishlist %d never reached %d viewers", wishlistID, want)
}

func receiveEvent(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHub_PublishReachesAllViewersOfWishlist(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)
	other := newTestClient(hub, 2)

	hub.Register(first)
	hub.Register(second)
	hub.Register(other)
	waitForViewers(t, hub, 1, 2)
	waitForViewers(t, hub, 2, 1)

	hub.Publish(1, EventItemReserved)

	for _, client := range []*Client{first, second} {
		event := receiveEvent(t, client)
		assert.Equal(t, EventItemReserved, event.Type)
		assert.Equal(t, uint(1), event.WishlistID)
	}

	// the viewer of wishlist 2 must not see wishlist 1 traffic
	select {
	case <-other.Send:
		t.Fatal("viewer of another wishlist received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EventCarriesNoPayload(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	viewer := newTestClient(hub, 7)
	hub.Register(viewer)
	waitForViewers(t, hub, 7, 1)

	hub.Publish(7, EventContributionAdded)

	select {
	case data := <-viewer.Send:
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Len(t, raw, 2)
		assert.Contains(t, raw, "type")
		assert.Contains(t, raw, "wishlist_id")
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestHub_UnregisterRemovesViewer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	viewer := newTestClient(hub, 3)
	hub.Register(viewer)
	waitForViewers(t, hub, 3, 1)

	hub.Unregister(viewer)
	waitForViewers(t, hub, 3, 0)

	// publishing into an empty room must not block or panic
	hub.Publish(3, EventItemUpdated)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	// hub.Run intentionally not started: the broadcast queue fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			hub.Publish(1, EventItemUpdated)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full broadcast queue")
	}
}
