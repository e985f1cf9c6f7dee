package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/podclips/internal/domain/model"
)

func voteEvent(id string) Event {
	return model.VoteEvent{ID: id, ClipID: "clip1", VoteType: model.VoteBest, Voter: "v", At: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	if !q.Enqueue(ctx, voteEvent("event1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.ID != "event1" {
		t.Errorf("expected event1, got %v", event.ID)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, voteEvent("event1")) || !q.Enqueue(ctx, voteEvent("event2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, voteEvent("event3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, voteEvent("late")) {
		t.Error("expected enqueue to fail on a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const (
		producers = 10
		perEach   = 100
	)
	q := NewInMemoryQueue(WithCapacity(producers * perEach))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range perEach {
				if !q.Enqueue(ctx, voteEvent(fmt.Sprintf("p%d-%d", p, i))) {
					t.Errorf("enqueue p%d-%d failed", p, i)
				}
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[string]bool)
	for ev := range q.Dequeue(ctx) {
		if seen[ev.ID] {
			t.Errorf("duplicate event %s", ev.ID)
		}
		seen[ev.ID] = true
	}
	if len(seen) != producers*perEach {
		t.Errorf("expected %d events, got %d", producers*perEach, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := range 3 {
		q.Enqueue(ctx, voteEvent(fmt.Sprintf("e%d", i)))
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, voteEvent("after-close")) {
		t.Error("expected enqueue after close to fail")
	}

	drained := 0
	for range q.Dequeue(ctx) {
		drained++
	}
	if drained != 3 {
		t.Errorf("expected queued events to drain after close, got %d", drained)
	}
}
