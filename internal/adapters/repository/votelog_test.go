package repository

import (
	"context"
	"testing"
	"time"

	model "github.com/okian/podclips/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVoteLog(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	logs := map[string]func() VoteLog{
		"memory": func() VoteLog { return NewMemoryVoteLog() },
		"sqlite": func() VoteLog {
			s, err := OpenSQLStore(ctx, DriverSQLite, "")
			So(err, ShouldBeNil)
			Reset(func() { _ = s.Close() })
			return s
		},
	}

	for name, open := range logs {
		Convey("Given a "+name+" vote log", t, func() {
			vl := open()
			events := []model.VoteEvent{
				{ID: name + "-1", ClipID: "clip1", VoteType: model.VoteBest, Voter: "alice", At: now.Add(-48 * time.Hour)},
				{ID: name + "-2", ClipID: "clip1", VoteType: model.VoteWorst, Voter: "bob", At: now.Add(-2 * time.Hour)},
				{ID: name + "-3", ClipID: "clip2", VoteType: model.VoteBest, Voter: "bob", At: now.Add(-time.Hour)},
				{ID: name + "-4", ClipID: "clip3", VoteType: model.VoteBest, Voter: "", At: now},
			}

			Convey("When events are recorded", func() {
				for _, ev := range events {
					So(vl.Record(ctx, ev), ShouldBeNil)
				}

				Convey("Then every event is counted", func() {
					n, err := vl.Recorded(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 4)
				})

				Convey("And active voters only count distinct recent voters", func() {
					active, err := vl.ActiveVoters(ctx, now.Add(-24*time.Hour))
					So(err, ShouldBeNil)
					So(active, ShouldEqual, 2) // bob and anonymous

					all, err := vl.ActiveVoters(ctx, now.Add(-72*time.Hour))
					So(err, ShouldBeNil)
					So(all, ShouldEqual, 3)

					none, err := vl.ActiveVoters(ctx, now.Add(time.Minute))
					So(err, ShouldBeNil)
					So(none, ShouldEqual, 0)
				})
			})
		})
	}
}
