package ws

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"findsync/internal/models"
)

const relayPublishTimeout = 500 * time.Millisecond

// RedisRelay spreads new item events across API instances. Each instance
// publishes on a Redis channel and delivers what it receives from that
// channel to its local hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisRelay constructs a RedisRelay.
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Run delivers channel messages to the local hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
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
			r.hub.Deliver([]byte(msg.Payload))
		}
	}
}

// BroadcastNewItem publishes the event on Redis in the background and
// returns once the event is encoded. When Redis is unreachable the event is
// delivered to local subscribers only.
func (r *RedisRelay) BroadcastNewItem(ctx context.Context, item models.Item) error {
	payload, err := encodeNewItem(item)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), relayPublishTimeout)
	go func() {
		defer cancel()
		if err := r.client.Publish(pubCtx, r.channel, payload).Err(); err != nil {
			r.logger.Warn("redis publish failed, delivering locally", zap.Int("item_id", item.ID), zap.Error(err))
			r.hub.Deliver(payload)
		}
	}()
	return nil
}
