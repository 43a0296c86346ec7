// Package events fans lifecycle notifications out to live subscribers,
// such as dashboard SSE streams.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/ports"
)

const defaultBuffer = 32

type subscriber struct {
	userID string
	ch     chan ports.Event
}

// Bus is an in-process publisher. Publish never blocks: events for a
// subscriber whose buffer is full are dropped.
type Bus struct {
	log    *zap.Logger
	buffer int

	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	closed  bool
	nextID  atomic.Uint64
	dropped atomic.Uint64
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		log:    log,
		buffer: defaultBuffer,
		subs:   make(map[uint64]*subscriber),
	}
}

// Subscribe returns a channel receiving the user's events and a function
// that unsubscribes and closes the channel. Calling it twice is safe.
func (b *Bus) Subscribe(userID string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, b.buffer)
	id := b.nextID.Add(1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = &subscriber{userID: userID, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Publish delivers event to every subscriber of event.UserID.
func (b *Bus) Publish(_ context.Context, event ports.Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
			b.log.Debug("dropping event for slow subscriber", zap.String("type", string(event.Type)))
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was not keeping up.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
