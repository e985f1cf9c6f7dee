package votesim

import (
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/okian/podclips/internal/domain/model"
)

// generateVotes spreads cfg.Votes over clipIDs and cfg.Voters voters.
func generateVotes(cfg Config, clipIDs []string) []Vote {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	voters := make([]string, cfg.Voters)
	for i := range voters {
		voters[i] = "sim-" + uuid.NewString()
	}

	ids := slices.Clone(clipIDs)
	slices.Sort(ids)

	votes := make([]Vote, cfg.Votes)
	for i := range votes {
		vt := model.VoteBest
		if rng.Float64() < cfg.WorstRatio {
			vt = model.VoteWorst
		}
		votes[i] = Vote{
			ClipID:   ids[rng.IntN(len(ids))],
			VoteType: vt,
			Voter:    voters[rng.IntN(len(voters))],
		}
	}
	return votes
}
