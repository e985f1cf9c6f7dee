// Package scoring derives vote_score and controversy_score from a clip's counters.
package scoring

import (
	model "github.com/okian/podclips/internal/domain/model"
)

// VoteScore is net approval: best minus worst.
func VoteScore(best, worst int) int {
	return best - worst
}

// Controversy is min(best, worst) / max(best+worst, 1).
// It is 0 without votes and peaks at 0.5 when both sides are equal.
func Controversy(best, worst int) float64 {
	return float64(min(best, worst)) / float64(max(best+worst, 1))
}

// Recompute refreshes the derived fields of c from its counters.
func Recompute(c *model.Clip) {
	c.VoteScore = VoteScore(c.BestVotes, c.WorstVotes)
	c.ControversyScore = Controversy(c.BestVotes, c.WorstVotes)
}

// Apply increments the counter matching vt and recomputes the derived fields.
// An unknown vote type leaves the counters alone; it reports whether a counter moved.
func Apply(c *model.Clip, vt model.VoteType) bool {
	moved := true
	switch vt {
	case model.VoteBest:
		c.BestVotes++
	case model.VoteWorst:
		c.WorstVotes++
	default:
		moved = false
	}
	Recompute(c)
	return moved
}

// Consistent reports whether the derived fields of c match its counters.
func Consistent(c model.Clip) bool {
	return c.VoteScore == VoteScore(c.BestVotes, c.WorstVotes) &&
		c.ControversyScore == Controversy(c.BestVotes, c.WorstVotes)
}
