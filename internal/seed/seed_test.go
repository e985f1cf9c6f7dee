package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/podclips/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSample(t *testing.T) {
	Convey("Given the built-in sample", t, func() {
		clips, err := Sample()
		So(err, ShouldBeNil)

		Convey("Then it holds the three demo clips of one episode", func() {
			So(len(clips), ShouldEqual, 3)
			So(clips[0].ID, ShouldEqual, "clip1")
			So(clips[2].ID, ShouldEqual, "clip3")
			for _, c := range clips {
				So(c.EpisodeTitle, ShouldEqual, "The Future of Work with Sarah Chen")
				So(c.PodcastName, ShouldEqual, "Tech Talk Daily")
				So(c.Description, ShouldNotBeNil)
				So(c.TranscriptText, ShouldNotBeNil)
				So(len(c.Tags), ShouldEqual, 3)
			}
		})

		Convey("Then derived scores are computed from the counters", func() {
			So(clips[0].VoteScore, ShouldEqual, 133)
			So(clips[1].VoteScore, ShouldEqual, 22)
			So(clips[2].VoteScore, ShouldEqual, 222)
			So(clips[1].ControversyScore, ShouldAlmostEqual, 67.0/156.0, 1e-9)
			for _, c := range clips {
				So(scoring.Consistent(c), ShouldBeTrue)
			}
		})

		Convey("Then featured flags are kept", func() {
			So(clips[0].IsFeatured, ShouldBeTrue)
			So(clips[1].IsFeatured, ShouldBeFalse)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given seed documents", t, func() {
		Convey("When a clip has no optional fields", func() {
			clips, err := Parse([]byte(`
episodes: [{id: e, title: T, podcast_name: P}]
clips:
  - {id: a, episode_id: e, title: A, start_time_seconds: 0, end_time_seconds: 5, created_at: 2024-05-01T10:00:00Z}
`))
			So(err, ShouldBeNil)

			Convey("Then nullable fields stay nil and tags are empty", func() {
				So(clips[0].Description, ShouldBeNil)
				So(clips[0].TranscriptText, ShouldBeNil)
				So(clips[0].Tags, ShouldNotBeNil)
				So(len(clips[0].Tags), ShouldEqual, 0)
				So(clips[0].CreatedAt.Year(), ShouldEqual, 2024)
			})
		})

		Convey("When a clip references a missing episode", func() {
			_, err := Parse([]byte(`clips: [{id: a, episode_id: nope, title: A, end_time_seconds: 1}]`))
			So(errors.Is(err, ErrUnknownEpisode), ShouldBeTrue)
		})

		Convey("When a clip is invalid", func() {
			_, err := Parse([]byte(`
episodes: [{id: e}]
clips: [{id: a, episode_id: e, title: A, start_time_seconds: 9, end_time_seconds: 1}]
`))
			So(errors.Is(err, ErrInvalidSeed), ShouldBeTrue)
		})

		Convey("When the document is not YAML", func() {
			_, err := Parse([]byte("clips: [unterminated"))
			So(errors.Is(err, ErrInvalidSeed), ShouldBeTrue)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a seed file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		So(os.WriteFile(path, sampleClips, 0o600), ShouldBeNil)

		Convey("Then it loads like the built-in sample", func() {
			clips, err := LoadFile(path)
			So(err, ShouldBeNil)
			So(len(clips), ShouldEqual, 3)
		})

		Convey("Then a missing file is an error", func() {
			_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
