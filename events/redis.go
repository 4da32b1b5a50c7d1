package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker publishes events on a Redis pub/sub channel so every API
// instance sees every change. Local subscribers are served by an embedded
// MemoryBroker fed from the Redis subscription.
type RedisBroker struct {
	client  *redis.Client
	channel string
	local   *MemoryBroker
	pubsub  *redis.PubSub
	done    chan struct{}
}

// NewRedisBroker pings addr and starts relaying channel to local subscribers.
func NewRedisBroker(ctx context.Context, addr, channel string) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	pubsub := client.Subscribe(ctx, channel)
	// wait for the subscription confirmation so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	b := &RedisBroker{
		client:  client,
		channel: channel,
		local:   NewMemoryBroker(),
		pubsub:  pubsub,
		done:    make(chan struct{}),
	}
	go b.relay()
	return b, nil
}

func (b *RedisBroker) relay() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var evt Event
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			zap.L().Warn("ignoring malformed invoice event", zap.Error(err))
			continue
		}
		b.local.Deliver(evt)
	}
}

func (b *RedisBroker) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return b.local.Subscribe(ctx)
}

func (b *RedisBroker) Close() error {
	err := b.pubsub.Close()
	<-b.done
	_ = b.local.Close()
	if cerr := b.client.Close(); err == nil {
		err = cerr
	}
	return err
}
