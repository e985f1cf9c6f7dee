package votesim

import "errors"

// Sentinel kinds for simulation failures.
var (
	ErrUnhealthy  = errors.New("service unhealthy")
	ErrNoClips    = errors.New("no clips to vote on")
	ErrLostVotes  = errors.New("acknowledged votes missing from counters")
	ErrInvariants = errors.New("clip invariants violated")
)
