package repository

import (
	"time"

	"github.com/okian/podclips/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithMaxOpenConns caps the connection pool. Ignored for sqlite, which runs on one connection.
func WithMaxOpenConns(n int) SQLOption {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithCASRetries sets how many compare-and-swap attempts a vote gets before ErrConflict.
func WithCASRetries(n int) SQLOption {
	return func(s *SQLStore) {
		if n > 0 {
			s.casRetries = n
		}
	}
}

// WithSQLLogger sets the logger used for conflict and schema messages.
func WithSQLLogger(l logger.Logger) SQLOption {
	return func(s *SQLStore) {
		if l != nil {
			s.log = l
		}
	}
}
