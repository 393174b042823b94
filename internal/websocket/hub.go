package websocket

import (
	"encoding/json"
	"sync"

	"github.com/giftwish/giftwish-backend/pkg/logger"
)

// Event types pushed to wishlist viewers. Events carry no state beyond the
// affected wishlist: clients must re-fetch the snapshot, never apply a diff.
const (
	EventItemCreated       = "item_created"
	EventItemUpdated       = "item_updated"
	EventItemDeleted       = "item_deleted"
	EventItemReserved      = "item_reserved"
	EventContributionAdded = "contribution_added"
)

// Event is the invalidation signal broadcast to every viewer of a wishlist
type Event struct {
	Type       string `json:"type"`
	WishlistID uint   `json:"wishlist_id"`
}

// Client is one viewer connection. Viewers are anonymous: a client carries
// no identity, only the wishlist it watches.
type Client struct {
	Hub        *Hub
	Conn       *Conn
	WishlistID uint
	Send       chan []byte
}

// Hub tracks viewer connections per wishlist and fans events out to them
type Hub struct {
	// wishlist id -> connected viewers
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *Event, 1024),
	}
}

// Run processes registrations and broadcasts. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.WishlistID]; !ok {
				h.rooms[client.WishlistID] = make(map[*Client]bool)
			}
			h.rooms[client.WishlistID][client] = true
			viewers := len(h.rooms[client.WishlistID])
			h.mu.Unlock()
			logger.Debug("Viewer connected", map[string]interface{}{
				"wishlist_id": client.WishlistID,
				"viewers":     viewers,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if viewers, ok := h.rooms[client.WishlistID]; ok {
				if _, connected := viewers[client]; connected {
					delete(viewers, client)
					close(client.Send)
					if len(viewers) == 0 {
						delete(h.rooms, client.WishlistID)
					}
				}
			}
			h.mu.Unlock()
			logger.Debug("Viewer disconnected", map[string]interface{}{
				"wishlist_id": client.WishlistID,
			})

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal event", err)
				continue
			}

			h.mu.RLock()
			for client := range h.rooms[event.WishlistID] {
				select {
				case client.Send <- data:
					// delivered
				default:
					// send buffer full: drop the viewer, it will re-sync on reconnect
					go h.Unregister(client)
					logger.Warn("Viewer send buffer full, disconnecting", map[string]interface{}{
						"wishlist_id": event.WishlistID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues an invalidation event for every viewer of a wishlist.
// Delivery is best-effort and never blocks the caller: a full broadcast
// queue drops the event, since disconnected viewers re-sync on reconnect
// and the snapshot read is always consistent with the ledger.
func (h *Hub) Publish(wishlistID uint, eventType string) {
	select {
	case h.broadcast <- &Event{Type: eventType, WishlistID: wishlistID}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"wishlist_id": wishlistID,
			"type":        eventType,
		})
	}
}

// Register adds a viewer connection
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a viewer connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ViewerCount reports how many connections watch a wishlist
func (h *Hub) ViewerCount(wishlistID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[wishlistID])
}
