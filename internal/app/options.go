package service

import (
	"time"

	repository "github.com/okian/podclips/internal/adapters/repository"
	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the clip store. The caller keeps ownership of it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithVoteLog injects the vote log. Defaults to the store when it is one,
// otherwise to an in-memory log.
func WithVoteLog(voteLog repository.VoteLog) Option {
	return func(s *Service) {
		if voteLog != nil {
			s.voteLog = voteLog
		}
	}
}

// WithWorkerCount sets the number of vote log workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the vote event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithActiveWindow sets how far back a voter still counts as active.
func WithActiveWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.activeWindow = window
		}
	}
}

// WithRejectUnknownVoteType selects strict (true) or lenient handling of unknown vote types.
func WithRejectUnknownVoteType(reject bool) Option {
	return func(s *Service) {
		s.rejectUnknownVoteType = reject
	}
}

// WithSeed sets clips inserted on Start when the store is empty.
func WithSeed(clips []model.Clip) Option {
	return func(s *Service) {
		s.seed = clips
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
