package votesim

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/internal/domain/scoring"
)

const scoreTolerance = 1e-9

// verify compares counter growth with acknowledged votes and checks the
// derived score invariants on every clip. It returns the number of
// acknowledged votes missing from the counters and a description of every
// other discrepancy.
func verify(before, after map[string]model.Clip, acked map[string]tally) (int, []string) {
	var (
		lost       int
		violations []string
	)

	ids := make([]string, 0, len(after))
	for id := range after {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := after[id]
		b, existed := before[id]
		if !existed {
			violations = append(violations, fmt.Sprintf("clip %s appeared during the run", id))
			continue
		}
		want := acked[id]
		gotBest, gotWorst := a.BestVotes-b.BestVotes, a.WorstVotes-b.WorstVotes

		if gotBest < want.best {
			lost += want.best - gotBest
		} else if gotBest > want.best {
			violations = append(violations, fmt.Sprintf("clip %s: %d unacknowledged best votes", id, gotBest-want.best))
		}
		if gotWorst < want.worst {
			lost += want.worst - gotWorst
		} else if gotWorst > want.worst {
			violations = append(violations, fmt.Sprintf("clip %s: %d unacknowledged worst votes", id, gotWorst-want.worst))
		}

		if a.VoteScore != scoring.VoteScore(a.BestVotes, a.WorstVotes) {
			violations = append(violations, fmt.Sprintf("clip %s: vote_score %d != %d - %d", id, a.VoteScore, a.BestVotes, a.WorstVotes))
		}
		if want := scoring.Controversy(a.BestVotes, a.WorstVotes); math.Abs(a.ControversyScore-want) > scoreTolerance {
			violations = append(violations, fmt.Sprintf("clip %s: controversy_score %g, expected %g", id, a.ControversyScore, want))
		}
		if a.ControversyScore < 0 || a.ControversyScore > 1 {
			violations = append(violations, fmt.Sprintf("clip %s: controversy_score %g out of [0,1]", id, a.ControversyScore))
		}
	}

	for id := range before {
		if _, ok := after[id]; !ok {
			violations = append(violations, fmt.Sprintf("clip %s disappeared during the run", id))
		}
	}
	return lost, violations
}
