package model

import (
	"strings"
	"time"
)

// VoteType is the kind of vote cast on a clip.
type VoteType string

const (
	VoteBest    VoteType = "best"
	VoteWorst   VoteType = "worst"
	VoteUnknown VoteType = ""
)

// ParseVoteType maps a wire value to a VoteType. Matching is exact;
// anything else yields VoteUnknown and false.
func ParseVoteType(s string) (VoteType, bool) {
	switch VoteType(s) {
	case VoteBest:
		return VoteBest, true
	case VoteWorst:
		return VoteWorst, true
	default:
		return VoteUnknown, false
	}
}

// Valid reports whether v moves a counter.
func (v VoteType) Valid() bool {
	return v == VoteBest || v == VoteWorst
}

func (v VoteType) String() string {
	if v == VoteUnknown {
		return "unknown"
	}
	return string(v)
}

// VoteEvent records one accepted vote for the vote log.
type VoteEvent struct {
	ID       string    `json:"id"`
	ClipID   string    `json:"clip_id"`
	VoteType VoteType  `json:"vote_type"`
	Voter    string    `json:"voter"`
	At       time.Time `json:"at"`
}

// NormalizeVoter trims a voter identity and falls back to "anonymous".
func NormalizeVoter(voter string) string {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return "anonymous"
	}
	return voter
}
