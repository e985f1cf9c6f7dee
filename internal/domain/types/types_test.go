package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/podclips/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlatformStats(t *testing.T) {
	Convey("Given clip stats and an active user count", t, func() {
		stats := types.Stats{TotalClips: 3, TotalVotes: 581, FeaturedCount: 2}

		Convey("When building platform stats", func() {
			ps := types.NewPlatformStats(stats, 7)

			Convey("Then trending clips mirror the featured count", func() {
				So(ps.TotalClips, ShouldEqual, 3)
				So(ps.TotalVotes, ShouldEqual, 581)
				So(ps.ActiveUsers, ShouldEqual, 7)
				So(ps.TrendingClips, ShouldEqual, 2)
				So(ps.FeaturedCount, ShouldEqual, 2)
			})

			Convey("And the JSON body uses the wire names", func() {
				raw, err := json.Marshal(ps)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual,
					`{"total_clips":3,"total_votes":581,"active_users":7,"trending_clips":2,"featured_count":2}`)
			})
		})
	})
}
