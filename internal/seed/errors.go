package seed

import "errors"

// Sentinel kinds for seed errors.
var (
	ErrInvalidSeed    = errors.New("invalid seed data")
	ErrUnknownEpisode = errors.New("unknown episode")
)
