package events

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe("s1")
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	// Channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}

	// Unsubscribing twice is a no-op
	b.Unsubscribe(id)
}

func TestBroadcaster_Broadcast(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe("s1")
	defer b.Unsubscribe(id)

	view := &models.View{
		SessionID: "s1",
		Controls:  models.Controls{From: 1995, To: 2000, Target: 2.0},
	}

	b.Broadcast(view)

	select {
	case received := <-ch:
		if received.Controls != view.Controls {
			t.Errorf("expected controls %+v, got %+v", view.Controls, received.Controls)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestBroadcaster_OnlyMatchingSession(t *testing.T) {
	b := NewBroadcaster()

	idA, chA := b.Subscribe("a")
	defer b.Unsubscribe(idA)
	idB, chB := b.Subscribe("b")
	defer b.Unsubscribe(idB)

	b.Broadcast(&models.View{SessionID: "a"})

	if len(chA) != 1 {
		t.Errorf("expected 1 view for session a, got %d", len(chA))
	}
	if len(chB) != 0 {
		t.Errorf("expected no views for session b, got %d", len(chB))
	}
}

func TestBroadcaster_ConcurrentSubscribeBroadcast(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch := b.Subscribe("shared")
			// Drain channel to prevent blocking
			done := make(chan struct{})
			go func() {
				for range ch {
				}
				close(done)
			}()
			time.Sleep(5 * time.Millisecond)
			b.Unsubscribe(id)
			<-done
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Broadcast(&models.View{
				SessionID: "shared",
				Controls:  models.Controls{Target: float64(n)},
			})
		}(i)
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()

	var channels []chan *models.View
	for i := 0; i < 5; i++ {
		_, ch := b.Subscribe("s")
		channels = append(channels, ch)
	}

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", b.SubscriberCount())
	}

	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("channel %d should be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}
}

func TestBroadcaster_SlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe("s")
	defer b.Unsubscribe(id)

	// Fill the buffer + 1 more
	for i := 0; i < subscriberBuffer+1; i++ {
		b.Broadcast(&models.View{SessionID: "s"})
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("expected %d buffered views, got %d", subscriberBuffer, len(ch))
	}
}
