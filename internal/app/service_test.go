package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/podclips/internal/adapters/repository"
	service "github.com/okian/podclips/internal/app"
	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleClips() []model.Clip {
	return []model.Clip{
		{ID: "a", Title: "A", StartSeconds: 0, EndSeconds: 10, BestVotes: 10, WorstVotes: 5, CreatedAt: epoch, Tags: []string{"x"}},
		{ID: "b", Title: "B", StartSeconds: 5, EndSeconds: 15, BestVotes: 3, WorstVotes: 1, CreatedAt: epoch.Add(2 * time.Hour), IsFeatured: true},
		{ID: "c", Title: "C", StartSeconds: 1, EndSeconds: 2, BestVotes: 1, WorstVotes: 1, CreatedAt: epoch.Add(time.Hour)},
	}
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{
		service.WithWorkerCount(2),
		service.WithSeed(sampleClips()),
	}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func ids(clips []model.Clip) []string {
	out := make([]string, 0, len(clips))
	for _, c := range clips {
		out = append(out, c.ID)
	}
	return out
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be started", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["rejectUnknownVoteType"], ShouldBeTrue)
			So(stats["queueSize"], ShouldEqual, 10000)
		})

		Convey("Then operations report it is not started", func() {
			_, err := svc.ListClips(context.Background(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.ApplyVote(context.Background(), "a", "best", "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithActiveWindow(time.Hour),
			service.WithRejectUnknownVoteType(false),
		)

		Convey("Then the options are reflected in its stats", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["activeWindow"], ShouldEqual, "1h0m0s")
			So(stats["rejectUnknownVoteType"], ShouldBeFalse)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a started service with a seed", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("Then it is marked as started and seeded", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["totalClips"], ShouldEqual, 3)
		})

		Convey("Then seeded clips carry recomputed derived scores", func() {
			clip, err := svc.GetClip(context.Background(), "a")
			So(err, ShouldBeNil)
			So(clip.VoteScore, ShouldEqual, 5)
			So(clip.ControversyScore, ShouldAlmostEqual, 5.0/15.0, 1e-9)
		})

		Convey("Then starting twice is a no-op", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given an injected store that already holds clips", t, func() {
		store := repository.NewMemoryStore(context.Background())
		defer store.Close()
		So(store.Insert(context.Background(), model.Clip{ID: "z", Title: "Z", EndSeconds: 1}), ShouldBeNil)

		svc := startService(service.WithStore(store))
		defer svc.Stop()

		Convey("Then the seed is skipped", func() {
			n, err := store.Count(context.Background())
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Then stopping leaves the injected store open", func() {
			svc.Stop()
			_, err := store.Get(context.Background(), "z")
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a service that was stopped", t, func() {
		svc := startService()
		svc.Stop()

		Convey("Then it can be started again with a fresh store", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()
			clips, err := svc.ListClips(context.Background(), "")
			So(err, ShouldBeNil)
			So(len(clips), ShouldEqual, 3)
		})
	})
}

func TestService_ApplyVote(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clip with 10 best and 5 worst votes", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("When a worst vote is applied", func() {
			clip, err := svc.ApplyVote(ctx, "a", "worst", "alice")
			So(err, ShouldBeNil)

			Convey("Then counters and derived scores are updated", func() {
				So(clip.BestVotes, ShouldEqual, 10)
				So(clip.WorstVotes, ShouldEqual, 6)
				So(clip.VoteScore, ShouldEqual, 4)
				So(clip.ControversyScore, ShouldEqual, 0.375)

				stored, err := svc.GetClip(ctx, "a")
				So(err, ShouldBeNil)
				So(stored.WorstVotes, ShouldEqual, 6)
			})
		})

		Convey("When a best vote is applied", func() {
			clip, err := svc.ApplyVote(ctx, "a", "best", "")
			So(err, ShouldBeNil)
			So(clip.BestVotes, ShouldEqual, 11)
			So(clip.VoteScore, ShouldEqual, 6)
		})

		Convey("When the clip does not exist", func() {
			_, err := svc.ApplyVote(ctx, "missing", "best", "")

			Convey("Then not found is returned and nothing changes", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				st, err := svc.ComputeStats(ctx)
				So(err, ShouldBeNil)
				So(st.TotalVotes, ShouldEqual, 21)
			})
		})

		Convey("When the vote type is unknown", func() {
			_, err := svc.ApplyVote(ctx, "a", "meh", "")

			Convey("Then strict mode rejects it without mutation", func() {
				So(errors.Is(err, service.ErrInvalidVoteType), ShouldBeTrue)
				clip, err := svc.GetClip(ctx, "a")
				So(err, ShouldBeNil)
				So(clip.BestVotes, ShouldEqual, 10)
				So(clip.WorstVotes, ShouldEqual, 5)
			})
		})

		Convey("When the vote type is unknown and the clip is missing", func() {
			_, err := svc.ApplyVote(ctx, "missing", "meh", "")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a lenient service", t, func() {
		svc := startService(service.WithRejectUnknownVoteType(false))
		defer svc.Stop()

		Convey("When the vote type is unknown", func() {
			clip, err := svc.ApplyVote(ctx, "a", "meh", "")

			Convey("Then it succeeds without changing counters", func() {
				So(err, ShouldBeNil)
				So(clip.BestVotes, ShouldEqual, 10)
				So(clip.WorstVotes, ShouldEqual, 5)
				So(clip.VoteScore, ShouldEqual, 5)
			})
		})

		Convey("When the clip is missing", func() {
			_, err := svc.ApplyVote(ctx, "missing", "meh", "")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_ListClips(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded service", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("Then vote_score sorts descending", func() {
			clips, err := svc.ListClips(ctx, "vote_score")
			So(err, ShouldBeNil)
			So(ids(clips), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Then created_at sorts newest first", func() {
			clips, err := svc.ListClips(ctx, "created_at")
			So(err, ShouldBeNil)
			So(ids(clips), ShouldResemble, []string{"b", "c", "a"})
		})

		Convey("Then controversy_score sorts descending", func() {
			clips, err := svc.ListClips(ctx, "controversy_score")
			So(err, ShouldBeNil)
			So(ids(clips), ShouldResemble, []string{"c", "a", "b"})
		})

		Convey("Then unknown keys keep the natural order", func() {
			clips, err := svc.ListClips(ctx, "popularity")
			So(err, ShouldBeNil)
			So(ids(clips), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Then mutating the result does not touch the store", func() {
			clips, err := svc.ListClips(ctx, "")
			So(err, ShouldBeNil)
			clips[0].BestVotes = 999
			clips[0].Tags[0] = "changed"

			clip, err := svc.GetClip(ctx, clips[0].ID)
			So(err, ShouldBeNil)
			So(clip.BestVotes, ShouldNotEqual, 999)
			So(clip.Tags[0], ShouldEqual, "x")
		})
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded service", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("Then stats aggregate all clips", func() {
			st, err := svc.ComputeStats(ctx)
			So(err, ShouldBeNil)
			So(st.TotalClips, ShouldEqual, 3)
			So(st.TotalVotes, ShouldEqual, 21)
			So(st.FeaturedCount, ShouldEqual, 1)

			again, err := svc.ComputeStats(ctx)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, st)
		})

		Convey("Then platform stats mirror featured clips as trending", func() {
			ps, err := svc.PlatformStats(ctx)
			So(err, ShouldBeNil)
			So(ps.TrendingClips, ShouldEqual, ps.FeaturedCount)
			So(ps.ActiveUsers, ShouldEqual, 0)
		})
	})
}
