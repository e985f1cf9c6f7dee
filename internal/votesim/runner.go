package votesim

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/pkg/logger"
)

// Run executes a complete simulation. It assumes no other client votes on
// the target server while it runs; any concurrent traffic shows up as lost
// or extra votes.
func Run(ctx context.Context, config *Config) (*Report, error) {
	cfg := config.withDefaults()
	log := logger.Named("votesim")
	start := time.Now()

	log.Info(ctx, "starting vote simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("votes", cfg.Votes),
		logger.Int("workers", cfg.Workers),
		logger.Int("voters", cfg.Voters),
		logger.Float64("worstRatio", cfg.WorstRatio),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := c.health(ctx); err != nil {
		return nil, err
	}

	// Step 2: Snapshot clips and stats
	before, err := c.clips(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot clips: %w", err)
	}
	beforeStats, err := c.stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot stats: %w", err)
	}
	targets, err := pickTargets(cfg.ClipIDs, before)
	if err != nil {
		return nil, err
	}

	// Step 3: Submit votes concurrently
	votes := generateVotes(cfg, targets)
	report, acked := submit(ctx, c, cfg.Workers, votes)
	log.Info(ctx, "votes submitted",
		logger.Int("acknowledged", report.Acknowledged),
		logger.Int("conflicts", report.Conflicts),
		logger.Int("failed", report.Failed),
	)

	// Step 4: Verify counters against acknowledgments
	after, err := c.clips(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-read clips: %w", err)
	}
	afterStats, err := c.stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-read stats: %w", err)
	}
	report.LostVotes, report.Violations = verify(before, after, acked)
	if d := afterStats.TotalVotes - beforeStats.TotalVotes; d != report.Acknowledged {
		report.Violations = append(report.Violations,
			fmt.Sprintf("total_votes grew by %d, expected %d", d, report.Acknowledged))
	}
	report.Duration = time.Since(start)

	log.Info(ctx, "simulation finished",
		logger.Int("submitted", report.Submitted),
		logger.Int("lostVotes", report.LostVotes),
		logger.Int("violations", len(report.Violations)),
		logger.Duration("duration", report.Duration),
	)
	for _, v := range report.Violations {
		log.Warn(ctx, "violation", logger.String("detail", v))
	}

	switch {
	case report.LostVotes > 0:
		return report, fmt.Errorf("%w: %d", ErrLostVotes, report.LostVotes)
	case len(report.Violations) > 0:
		return report, fmt.Errorf("%w: %d", ErrInvariants, len(report.Violations))
	}
	return report, nil
}

func pickTargets(requested []string, clips map[string]model.Clip) ([]string, error) {
	if len(requested) == 0 {
		if len(clips) == 0 {
			return nil, ErrNoClips
		}
		ids := make([]string, 0, len(clips))
		for id := range clips {
			ids = append(ids, id)
		}
		return ids, nil
	}
	for _, id := range requested {
		if _, ok := clips[id]; !ok {
			return nil, fmt.Errorf("%w: clip %q not listed by the server", ErrNoClips, id)
		}
	}
	return slices.Clone(requested), nil
}

// submit posts votes from workers goroutines and counts acknowledgments per clip.
func submit(ctx context.Context, c *client, workers int, votes []Vote) (*Report, map[string]tally) {
	var (
		mu        sync.Mutex
		acked     = make(map[string]tally)
		submitted atomic.Int64
		conflicts atomic.Int64
		failed    atomic.Int64
		wg        sync.WaitGroup
	)

	ch := make(chan Vote, workers*2)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range ch {
				submitted.Add(1)
				status, err := c.vote(ctx, v)
				switch {
				case err != nil:
					failed.Add(1)
				case status == http.StatusOK:
					mu.Lock()
					t := acked[v.ClipID]
					if v.VoteType == model.VoteWorst {
						t.worst++
					} else {
						t.best++
					}
					acked[v.ClipID] = t
					mu.Unlock()
				case status == http.StatusConflict:
					conflicts.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, v := range votes {
			select {
			case <-ctx.Done():
				return
			case ch <- v:
			}
		}
	}()
	wg.Wait()

	r := &Report{
		Submitted: int(submitted.Load()),
		Conflicts: int(conflicts.Load()),
		Failed:    int(failed.Load()),
	}
	for _, t := range acked {
		r.Acknowledged += t.best + t.worst
	}
	return r, acked
}
