package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const subscriberBuffer = 32

// MemoryBroker delivers events within the process. A subscriber whose buffer
// is full misses the event; it never blocks the publisher.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	next   uint64
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[uint64]chan Event)}
}

func (b *MemoryBroker) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			zap.L().Warn("dropping event for slow subscriber",
				zap.Uint64("subscriber", id), zap.String("type", string(evt.Type)))
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.next++
	id := b.next
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel
}

// Deliver pushes an event received from elsewhere (e.g. Redis) to local
// subscribers.
func (b *MemoryBroker) Deliver(evt Event) {
	_ = b.Publish(context.Background(), evt)
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
