// Package service provides the vote aggregator and ranker that backs the
// HTTP API: clip listing, vote application and statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/podclips/internal/adapters/mq/queue"
	workerpool "github.com/okian/podclips/internal/adapters/mq/worker"
	repository "github.com/okian/podclips/internal/adapters/repository"
	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/internal/domain/ranking"
	"github.com/okian/podclips/internal/domain/types"
	"github.com/okian/podclips/pkg/logger"
	"github.com/okian/podclips/pkg/metrics"
)

const (
	defaultQueueSize    = 10000
	defaultActiveWindow = 24 * time.Hour
	stopTimeout         = 10 * time.Second
)

// Service owns the clip store and the asynchronous vote log pipeline.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	voteLog    repository.VoteLog
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	workerCount           int
	queueSize             int
	activeWindow          time.Duration
	rejectUnknownVoteType bool
	seed                  []model.Clip
	now                   func() time.Time

	ownsStore   bool
	ownsVoteLog bool
	started     bool
	startedAt   time.Time

	logger logger.Logger
}

// New constructs a Service. Components are created on Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:           runtime.NumCPU(),
		queueSize:             defaultQueueSize,
		activeWindow:          defaultActiveWindow,
		rejectUnknownVoteType: true,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates missing components, seeds an empty store and starts the vote log workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting clip service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory clip store")
	}
	if s.voteLog == nil {
		s.ownsVoteLog = true
		if vl, ok := s.store.(repository.VoteLog); ok {
			s.voteLog = vl
		} else {
			s.voteLog = repository.NewMemoryVoteLog()
		}
	}

	if err := s.seedStore(ctx); err != nil {
		return err
	}

	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.voteLog)
	s.workerPool.Start(ctx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "clip service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("rejectUnknownVoteType", s.rejectUnknownVoteType),
	)
	return nil
}

func (s *Service) seedStore(ctx context.Context) error {
	if len(s.seed) == 0 {
		return nil
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count clips before seeding: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "store already populated, skipping seed", logger.Int("clips", n))
		return nil
	}
	if err := s.store.Insert(ctx, s.seed...); err != nil {
		return fmt.Errorf("seed clips: %w", err)
	}
	metrics.UpdateClipsTotal(len(s.seed))
	s.logger.Info(ctx, "seeded clip store", logger.Int("clips", len(s.seed)))
	return nil
}

// Stop drains the vote log pipeline. A store the service created itself is
// closed and dropped; an injected store stays open for its owner.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping clip service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "closing clip store failed", logger.Error(err))
		}
		s.store, s.ownsStore = nil, false
	}
	if s.ownsVoteLog {
		s.voteLog, s.ownsVoteLog = nil, false
	}

	s.started = false
	s.logger.Info(ctx, "clip service stopped")
}

// components returns the store and queue when the service is running.
func (s *Service) components() (repository.Store, *eventqueue.InMemoryQueue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.eventQueue, nil
}

// ApplyVote applies one vote to a clip. Unknown clips yield
// repository.ErrNotFound. An unrecognized vote type yields ErrInvalidVoteType
// in strict mode; otherwise it is a successful no-op. Accepted votes are
// handed to the vote log asynchronously.
func (s *Service) ApplyVote(ctx context.Context, clipID, voteType, voter string) (model.Clip, error) {
	store, q, err := s.components()
	if err != nil {
		return model.Clip{}, err
	}

	vt, known := model.ParseVoteType(voteType)
	if !known && s.rejectUnknownVoteType {
		if _, err := store.Get(ctx, clipID); err != nil {
			s.recordRejection(err)
			return model.Clip{}, err
		}
		metrics.RecordVoteRejected("invalid_vote_type")
		return model.Clip{}, fmt.Errorf("%w: %q", ErrInvalidVoteType, voteType)
	}

	clip, err := store.ApplyVote(ctx, clipID, vt)
	if err != nil {
		s.recordRejection(err)
		return model.Clip{}, err
	}
	if !known {
		metrics.RecordVoteRejected("unknown_vote_type")
		s.logger.Debug(ctx, "ignored unknown vote type",
			logger.String("clip_id", clipID),
			logger.String("vote_type", voteType),
		)
		return clip, nil
	}

	metrics.RecordVoteApplied(vt.String())
	s.emit(ctx, q, model.VoteEvent{
		ID:       uuid.NewString(),
		ClipID:   clipID,
		VoteType: vt,
		Voter:    model.NormalizeVoter(voter),
		At:       s.now().UTC(),
	})
	return clip, nil
}

func (s *Service) recordRejection(err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordVoteRejected("not_found")
	case errors.Is(err, repository.ErrConflict):
		metrics.RecordVoteRejected("conflict")
	default:
		metrics.RecordVoteRejected("store_error")
	}
}

// emit never blocks the vote; a full queue drops the event.
func (s *Service) emit(ctx context.Context, q *eventqueue.InMemoryQueue, ev model.VoteEvent) {
	if q.Enqueue(ctx, ev) {
		metrics.RecordVoteEvent("enqueued")
		return
	}
	metrics.RecordVoteEvent("dropped")
	s.logger.Warn(ctx, "vote event dropped",
		logger.String("event_id", ev.ID),
		logger.String("clip_id", ev.ClipID),
	)
}

// ListClips returns every clip ordered descending by sortBy. Unrecognized
// keys keep the natural order. The store is never mutated.
func (s *Service) ListClips(ctx context.Context, sortBy string) ([]model.Clip, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	clips, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	key, _ := ranking.ParseSortKey(sortBy)
	metrics.RecordListRequest(key.String())
	return ranking.Sort(clips, key), nil
}

// GetClip returns one clip or repository.ErrNotFound.
func (s *Service) GetClip(ctx context.Context, clipID string) (model.Clip, error) {
	store, _, err := s.components()
	if err != nil {
		return model.Clip{}, err
	}
	return store.Get(ctx, clipID)
}

// ComputeStats aggregates totals over every clip.
func (s *Service) ComputeStats(ctx context.Context) (types.Stats, error) {
	store, _, err := s.components()
	if err != nil {
		return types.Stats{}, err
	}
	return store.Stats(ctx)
}

// PlatformStats is ComputeStats plus vote log activity.
func (s *Service) PlatformStats(ctx context.Context) (types.PlatformStats, error) {
	st, err := s.ComputeStats(ctx)
	if err != nil {
		return types.PlatformStats{}, err
	}

	s.mu.RLock()
	voteLog, window := s.voteLog, s.activeWindow
	s.mu.RUnlock()

	active, err := voteLog.ActiveVoters(ctx, s.now().Add(-window))
	if err != nil {
		return types.PlatformStats{}, fmt.Errorf("active voters: %w", err)
	}
	return types.NewPlatformStats(st, active), nil
}

// GetStats returns service runtime statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":               s.started,
		"workerCount":           s.workerCount,
		"queueSize":             s.queueSize,
		"activeWindow":          s.activeWindow.String(),
		"rejectUnknownVoteType": s.rejectUnknownVoteType,
	}
	if !s.started {
		return stats
	}

	stats["startedAt"] = s.startedAt.UTC().Format(time.RFC3339)
	stats["queueLength"] = s.eventQueue.Len(ctx)
	stats["votesRecorded"] = s.workerPool.Processed()
	stats["votesFailed"] = s.workerPool.Failed()
	if n, err := s.store.Count(ctx); err == nil {
		stats["totalClips"] = n
		metrics.UpdateClipsTotal(n)
	}
	return stats
}
