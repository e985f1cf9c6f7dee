package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	model "github.com/okian/podclips/internal/domain/model"
	scoring "github.com/okian/podclips/internal/domain/scoring"
	types "github.com/okian/podclips/internal/domain/types"
	"github.com/okian/podclips/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore keeps clips in a slice (natural order) with an id index.
// Every vote runs its read-increment-recompute-write sequence under the
// write lock, so concurrent votes never lose an increment.
type MemoryStore struct {
	mu    sync.RWMutex
	clips []model.Clip
	byID  map[string]int

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs an empty in-memory store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                  make(map[string]int),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Insert implements Store.Insert.
func (s *MemoryStore) Insert(ctx context.Context, clips ...model.Clip) error {
	defer observe("insert", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(clips))
	for _, c := range clips {
		if reason := c.Validate(); reason != "" {
			return fmt.Errorf("%w: %q: %s", ErrInvalidClip, c.ID, reason)
		}
		if _, ok := s.byID[c.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateClip, c.ID)
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateClip, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	for _, c := range clips {
		c = c.Clone()
		scoring.Recompute(&c)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		s.byID[c.ID] = len(s.clips)
		s.clips = append(s.clips, c)
	}
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Clip, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Clip{}, ErrNotFound
	}
	return s.clips[i].Clone(), nil
}

// List implements Store.List.
func (s *MemoryStore) List(ctx context.Context) ([]model.Clip, error) {
	defer observe("list", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Clip, len(s.clips))
	for i, c := range s.clips {
		out[i] = c.Clone()
	}
	return out, nil
}

// ApplyVote implements Store.ApplyVote.
func (s *MemoryStore) ApplyVote(ctx context.Context, id string, vt model.VoteType) (model.Clip, error) {
	defer observe("apply_vote", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Clip{}, ErrNotFound
	}
	scoring.Apply(&s.clips[i], vt)
	return s.clips[i].Clone(), nil
}

// Stats implements Store.Stats.
func (s *MemoryStore) Stats(ctx context.Context) (types.Stats, error) {
	defer observe("stats", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return statsOf(s.clips), nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips), nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		s.updateMetrics()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	st := statsOf(s.clips)
	s.mu.RUnlock()

	metrics.UpdateClipsTotal(st.TotalClips)
	metrics.UpdateFeaturedTotal(st.FeaturedCount)
}

// observe records the latency of a store operation started at start.
func observe(operation string, start time.Time) {
	metrics.RecordStoreLatency(operation, float64(time.Since(start).Microseconds())/1000)
}
