package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/podclips/internal/votesim"
	"github.com/okian/podclips/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg        votesim.Config
		logFormat  string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "vote-sim",
		Short: "Fire concurrent votes at a podclips server and verify none are lost",
		Long: `vote-sim snapshots every clip, submits votes from many goroutines,
then re-reads the clips and checks that each acknowledged vote is reflected
in the counters and that vote_score and controversy_score are consistent.
Run it against a server no one else is voting on.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			report, err := votesim.Run(ctx, &cfg)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"submitted=%d acknowledged=%d conflicts=%d failed=%d lost=%d violations=%d duration=%s\n",
					report.Submitted, report.Acknowledged, report.Conflicts, report.Failed,
					report.LostVotes, len(report.Violations), report.Duration.Round(time.Millisecond))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "base URL of the service")
	f.IntVar(&cfg.Votes, "votes", votesim.DefaultVotes, "number of votes to submit")
	f.IntVar(&cfg.Workers, "workers", votesim.DefaultWorkers, "number of concurrent submitters")
	f.IntVar(&cfg.Voters, "voters", votesim.DefaultVoters, "number of distinct simulated voters")
	f.StringSliceVar(&cfg.ClipIDs, "clip", nil, "clip id to vote on (repeatable; default all clips)")
	f.Float64Var(&cfg.WorstRatio, "worst-ratio", 0.3, "share of worst votes")
	f.DurationVar(&cfg.Timeout, "timeout", votesim.DefaultTimeout, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "vote generation seed (0 picks one)")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "overall run timeout")
	f.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	return cmd
}
