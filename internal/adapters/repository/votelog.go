package repository

import (
	"context"
	"sync"
	"time"

	model "github.com/okian/podclips/internal/domain/model"
)

// MemoryVoteLog keeps the last vote time per voter and a running total.
type MemoryVoteLog struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
	recorded int
}

// NewMemoryVoteLog returns an empty vote log.
func NewMemoryVoteLog() *MemoryVoteLog {
	return &MemoryVoteLog{lastSeen: make(map[string]time.Time)}
}

// Record implements VoteLog.Record.
func (l *MemoryVoteLog) Record(ctx context.Context, ev model.VoteEvent) error {
	voter := model.NormalizeVoter(ev.Voter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if ev.At.After(l.lastSeen[voter]) {
		l.lastSeen[voter] = ev.At
	}
	l.recorded++
	return nil
}

// ActiveVoters implements VoteLog.ActiveVoters.
func (l *MemoryVoteLog) ActiveVoters(ctx context.Context, since time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, at := range l.lastSeen {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

// Recorded implements VoteLog.Recorded.
func (l *MemoryVoteLog) Recorded(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recorded, nil
}
