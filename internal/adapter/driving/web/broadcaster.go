package web

import (
	"context"
	"sync"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ViewNotifier = (*Broadcaster)(nil)

// Broadcaster fans refresh snapshots out to open panel event streams. Each
// subscriber holds at most one pending snapshot; a slow client only ever
// misses intermediate states, never the latest one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan model.AlertSnapshot]struct{}
}

// NewBroadcaster creates a Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan model.AlertSnapshot]struct{})}
}

// Subscribe registers a new stream. The returned cancel func must be called
// when the stream ends.
func (b *Broadcaster) Subscribe() (<-chan model.AlertSnapshot, func()) {
	ch := make(chan model.AlertSnapshot, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

// Subscribers returns the number of open streams.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// NotifyRefresh hands the snapshot to every subscriber without blocking.
func (b *Broadcaster) NotifyRefresh(_ context.Context, snapshot model.AlertSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
	return nil
}
