package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/podclips/internal/adapters/http/api"
	service "github.com/okian/podclips/internal/app"
	"github.com/okian/podclips/internal/seed"
	"github.com/okian/podclips/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestVoteSimCommand(t *testing.T) {
	convey.Convey("Given a podclips server", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		clips, err := seed.Sample()
		convey.So(err, convey.ShouldBeNil)

		svc := service.New(service.WithSeed(clips))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When vote-sim runs against it", func() {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--url", srv.URL, "--votes", "150", "--workers", "5", "--seed", "3"})
			err := cmd.Execute()

			convey.Convey("Then it reports zero lost votes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "acknowledged=150")
				convey.So(out.String(), convey.ShouldContainSubstring, "lost=0 violations=0")
			})
		})

		convey.Convey("When given an unknown flag", func() {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--nope"})
			convey.So(cmd.Execute(), convey.ShouldNotBeNil)
		})
	})
}
