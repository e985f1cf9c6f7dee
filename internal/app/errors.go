package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidVoteType = errors.New("invalid vote type")
	ErrNotStarted      = errors.New("service not started")
)
