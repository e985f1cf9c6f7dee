package api

import "github.com/okian/podclips/pkg/logger"

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Option configures a Server.
type Option func(*Server)

// WithListLimits sets the default and the maximum page size of GET /api/clips.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if s.defaultLimit > s.maxLimit {
			s.defaultLimit = s.maxLimit
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
