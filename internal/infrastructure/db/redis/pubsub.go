package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

const eventsChannel = "reviews:events"

// Bridge relays review events through Redis pub/sub so subscribers connected
// to any API instance receive every mutation, the same role a socket adapter
// plays in a multi-node deployment.
//
// Publish goes to Redis only; local delivery happens when the subscription
// loop receives the message back, keeping single- and multi-instance
// behaviour identical.
type Bridge struct {
	client *redis.Client
	local  ports.Broadcaster
	log    zerolog.Logger
}

func NewBridge(client *redis.Client, local ports.Broadcaster, log zerolog.Logger) *Bridge {
	return &Bridge{client: client, local: local, log: log}
}

// Publish sends the event to the Redis channel. On a Redis failure the event
// is delivered to local subscribers directly so an unhealthy broker degrades
// to single-instance fan-out instead of silence.
func (b *Bridge) Publish(event domain.ReviewEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error().Err(err).Msg("marshal review event")
		return
	}

	if err := b.client.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		b.log.Warn().Err(err).Msg("redis publish failed, delivering locally only")
		b.local.Publish(event)
	}
}

// Run consumes the Redis channel and forwards events to the local
// broadcaster until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.ReviewEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn().Err(err).Msg("drop malformed review event")
				continue
			}
			b.local.Publish(event)
		}
	}
}
