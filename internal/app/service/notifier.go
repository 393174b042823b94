package service

// ChangeNotifier fans invalidation events out to every connected viewer of a
// wishlist. Implementations must never block: publishing happens after a
// ledger commit and a slow subscriber must not stall mutation processing.
// Event type constants live in internal/websocket.
type ChangeNotifier interface {
	Publish(wishlistID uint, eventType string)
}

// NopNotifier discards events. Used where no hub is wired (tests, one-off
// tooling).
type NopNotifier struct{}

func (NopNotifier) Publish(uint, string) {}
