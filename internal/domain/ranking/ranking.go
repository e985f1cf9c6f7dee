// Package ranking orders clips by a chosen metric.
package ranking

import (
	"cmp"
	"slices"

	model "github.com/okian/podclips/internal/domain/model"
)

// SortKey names the metric clips are ordered by.
type SortKey string

const (
	ByVoteScore   SortKey = "vote_score"
	ByCreatedAt   SortKey = "created_at"
	ByControversy SortKey = "controversy_score"
	// Natural keeps the store's insertion order.
	Natural SortKey = ""
)

// DefaultSortKey is used when a request does not name one.
const DefaultSortKey = ByVoteScore

// ParseSortKey maps a query value to a SortKey. Unrecognized values
// yield Natural and false.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case ByVoteScore, ByCreatedAt, ByControversy:
		return k, true
	default:
		return Natural, false
	}
}

func (k SortKey) String() string {
	if k == Natural {
		return "natural"
	}
	return string(k)
}

// Sort returns a copy of clips ordered descending by key. The sort is stable,
// so ties keep their relative input order. Natural returns the input order.
// The input slice is never modified.
func Sort(clips []model.Clip, key SortKey) []model.Clip {
	out := slices.Clone(clips)
	if out == nil {
		out = []model.Clip{}
	}

	var compare func(a, b model.Clip) int
	switch key {
	case ByVoteScore:
		compare = func(a, b model.Clip) int { return cmp.Compare(b.VoteScore, a.VoteScore) }
	case ByCreatedAt:
		compare = func(a, b model.Clip) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case ByControversy:
		compare = func(a, b model.Clip) int { return cmp.Compare(b.ControversyScore, a.ControversyScore) }
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Page applies offset/limit to an ordered slice. Out-of-range offsets give
// an empty, non-nil result.
func Page(clips []model.Clip, skip, limit int) []model.Clip {
	if skip >= len(clips) || limit <= 0 {
		return []model.Clip{}
	}
	end := min(skip+limit, len(clips))
	return clips[skip:end]
}
