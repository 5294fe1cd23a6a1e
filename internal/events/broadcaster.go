package events

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

const subscriberBuffer = 16

type subscriber struct {
	sessionID string
	ch        chan *models.View
}

// Broadcaster fans view updates out to the subscribers of each session.
type Broadcaster struct {
	subscribers map[uint64]subscriber
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]subscriber),
	}
}

func (b *Broadcaster) Subscribe(sessionID string) (uint64, chan *models.View) {
	id := b.nextID.Add(1)
	ch := make(chan *models.View, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = subscriber{sessionID: sessionID, ch: ch}
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(v *models.View) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.sessionID != v.SessionID {
			continue
		}
		select {
		case sub.ch <- v:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
