package ports

import "github.com/revuo/reviews-api/internal/core/domain"

// Broadcaster announces review mutations to the realtime channel. Publish is
// fire-and-forget: no delivery guarantee, no persistence, and it must never
// block the caller.
type Broadcaster interface {
	Publish(event domain.ReviewEvent)
}

// NopBroadcaster discards every event. Useful in tests and as a fallback when
// no realtime transport is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(domain.ReviewEvent) {}
