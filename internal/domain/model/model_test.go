package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/podclips/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseVoteType(t *testing.T) {
	convey.Convey("Given wire vote types", t, func() {
		convey.Convey("When parsing known values", func() {
			best, okBest := model.ParseVoteType("best")
			worst, okWorst := model.ParseVoteType("worst")

			convey.Convey("Then they map to their constants", func() {
				convey.So(okBest, convey.ShouldBeTrue)
				convey.So(best, convey.ShouldEqual, model.VoteBest)
				convey.So(okWorst, convey.ShouldBeTrue)
				convey.So(worst, convey.ShouldEqual, model.VoteWorst)
				convey.So(best.Valid(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When parsing anything else", func() {
			for _, raw := range []string{"", "BEST", " best", "meh"} {
				vt, ok := model.ParseVoteType(raw)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(vt, convey.ShouldEqual, model.VoteUnknown)
				convey.So(vt.Valid(), convey.ShouldBeFalse)
				convey.So(vt.String(), convey.ShouldEqual, "unknown")
			}
		})
	})
}

func TestClip(t *testing.T) {
	convey.Convey("Given a clip", t, func() {
		clip := model.Clip{
			ID:           "clip1",
			Title:        "Remote Work is Fundamentally Broken",
			Description:  model.StringPtr("A controversial take"),
			StartSeconds: 120.5,
			EndSeconds:   165.8,
			Tags:         []string{"remote-work", "culture"},
			BestVotes:    156,
			WorstVotes:   23,
			CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			EpisodeTitle: "The Future of Work",
			PodcastName:  "Tech Talk Weekly",
		}

		convey.Convey("When cloning it", func() {
			cp := clip.Clone()
			cp.Tags[0] = "changed"
			*cp.Description = "changed"

			convey.Convey("Then the original is untouched", func() {
				convey.So(clip.Tags[0], convey.ShouldEqual, "remote-work")
				convey.So(*clip.Description, convey.ShouldEqual, "A controversial take")
				convey.So(cp.TranscriptText, convey.ShouldBeNil)
			})
		})

		convey.Convey("When marshalling it to JSON", func() {
			raw, err := json.Marshal(clip)
			convey.So(err, convey.ShouldBeNil)
			var m map[string]any
			convey.So(json.Unmarshal(raw, &m), convey.ShouldBeNil)

			convey.Convey("Then the wire field names are used", func() {
				for _, key := range []string{
					"id", "title", "description", "start_time_seconds", "end_time_seconds",
					"transcript_text", "tags", "best_votes", "worst_votes", "vote_score",
					"controversy_score", "is_featured", "created_at", "episode_title", "podcast_name",
				} {
					_, ok := m[key]
					convey.So(ok, convey.ShouldBeTrue)
				}
				convey.So(m["transcript_text"], convey.ShouldBeNil)
				convey.So(m["created_at"], convey.ShouldEqual, "2025-01-02T03:04:05Z")
			})
		})

		convey.Convey("When validating", func() {
			convey.So(clip.Validate(), convey.ShouldEqual, "")
			convey.So(clip.TotalVotes(), convey.ShouldEqual, 179)

			bad := clip
			bad.EndSeconds = bad.StartSeconds
			convey.So(bad.Validate(), convey.ShouldContainSubstring, "before")

			bad = clip
			bad.ID = ""
			convey.So(bad.Validate(), convey.ShouldEqual, "id is required")

			bad = clip
			bad.WorstVotes = -1
			convey.So(bad.Validate(), convey.ShouldContainSubstring, "negative")
		})
	})
}

func TestNormalizeVoter(t *testing.T) {
	convey.Convey("Given voter identities", t, func() {
		convey.So(model.NormalizeVoter("  user-1 "), convey.ShouldEqual, "user-1")
		convey.So(model.NormalizeVoter(""), convey.ShouldEqual, "anonymous")
	})
}
