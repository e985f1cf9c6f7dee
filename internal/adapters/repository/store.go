// Package repository defines the clip store and vote log interfaces and their implementations.
package repository

import (
	"context"
	"time"

	model "github.com/okian/podclips/internal/domain/model"
	types "github.com/okian/podclips/internal/domain/types"
)

// Store provides read/write access to the clip collection.
type Store interface {
	// Insert adds clips in order. Derived scores are recomputed from the counters.
	// The batch is rejected as a whole on ErrDuplicateClip or ErrInvalidClip.
	Insert(ctx context.Context, clips ...model.Clip) error

	// Get returns one clip or ErrNotFound.
	Get(ctx context.Context, id string) (model.Clip, error)

	// List returns a copy of every clip in natural (insertion) order.
	List(ctx context.Context) ([]model.Clip, error)

	// ApplyVote atomically increments the counter for vt and recomputes the
	// derived scores. An unknown vote type leaves the counters unchanged.
	// Returns the clip as stored after the update, or ErrNotFound.
	ApplyVote(ctx context.Context, id string, vt model.VoteType) (model.Clip, error)

	// Stats aggregates over every clip.
	Stats(ctx context.Context) (types.Stats, error)

	// Count returns the number of clips.
	Count(ctx context.Context) (int, error)

	Close() error
}

// VoteLog records accepted votes for activity statistics.
type VoteLog interface {
	// Record persists one vote event.
	Record(ctx context.Context, ev model.VoteEvent) error

	// ActiveVoters counts distinct voters with a vote at or after since.
	ActiveVoters(ctx context.Context, since time.Time) (int, error)

	// Recorded returns how many vote events were persisted.
	Recorded(ctx context.Context) (int, error)
}

func statsOf(clips []model.Clip) types.Stats {
	st := types.Stats{TotalClips: len(clips)}
	for _, c := range clips {
		st.TotalVotes += c.TotalVotes()
		if c.IsFeatured {
			st.FeaturedCount++
		}
	}
	return st
}
