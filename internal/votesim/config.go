// Package votesim drives concurrent vote traffic against a running server
// and checks that every acknowledged vote is reflected in the clip counters.
package votesim

import (
	"time"

	"github.com/okian/podclips/internal/domain/model"
)

// Defaults for Config fields left zero.
const (
	DefaultVotes   = 2000
	DefaultWorkers = 16
	DefaultVoters  = 50
	DefaultTimeout = 10 * time.Second

	pageSize = 100
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Votes      int           // Number of votes to submit
	Workers    int           // Number of concurrent submitters
	Voters     int           // Number of distinct simulated voters
	ClipIDs    []string      // Clips to vote on; all listed clips when empty
	WorstRatio float64       // Share of votes that are "worst", in [0,1]
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for vote generation; 0 picks one
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Votes <= 0 {
		out.Votes = DefaultVotes
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Voters <= 0 {
		out.Voters = DefaultVoters
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	out.WorstRatio = min(max(out.WorstRatio, 0), 1)
	return out
}

// Vote is one generated vote.
type Vote struct {
	ClipID   string
	VoteType model.VoteType
	Voter    string
}

// Report summarizes a run.
type Report struct {
	Submitted    int
	Acknowledged int
	Conflicts    int
	Failed       int
	LostVotes    int
	Violations   []string
	Duration     time.Duration
}

// OK reports whether the run found no lost votes and no invariant violations.
func (r *Report) OK() bool {
	return r.LostVotes == 0 && len(r.Violations) == 0
}

// tally counts acknowledged votes per clip.
type tally struct {
	best, worst int
}

// stats mirrors the /api/stats body.
type stats struct {
	TotalClips    int `json:"total_clips"`
	TotalVotes    int `json:"total_votes"`
	ActiveUsers   int `json:"active_users"`
	TrendingClips int `json:"trending_clips"`
	FeaturedCount int `json:"featured_count"`
}
