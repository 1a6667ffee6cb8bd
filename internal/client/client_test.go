package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/abalone/internal/adapters/http/api"
	service "github.com/okian/abalone/internal/app"
	"github.com/okian/abalone/internal/client"
	"github.com/okian/abalone/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ref := filepath.Join(t.TempDir(), "answers.csv")
	if err := os.WriteFile(ref, []byte("id,Rings\n1,10\n2,8\n"), 0o600); err != nil {
		t.Fatalf("write reference: %v", err)
	}
	svc := service.New(service.WithReferenceFile(ref))
	srv := httptest.NewServer(api.NewServer(svc).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	Convey("Given a client pointed at a running server", t, func() {
		srv := newServer(t)
		c := client.New(srv.URL, client.WithTimeout(5*time.Second))
		ctx := context.Background()

		Convey("When a valid file is submitted", func() {
			res, err := c.Submit(ctx, "Shellfish", "Alice,Bob", "preds.csv", strings.NewReader("id,Rings\n1,10\n2,10\n"))

			Convey("Then the score comes back", func() {
				So(err, ShouldBeNil)
				So(res.Message, ShouldEqual, "Submission successful")
				So(res.RMSE, ShouldAlmostEqual, 1.4142135623730951, 1e-12)
			})

			Convey("And the leaderboard lists the team", func() {
				entries, err := c.Leaderboard(ctx)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].TeamName, ShouldEqual, "Shellfish")
				So(entries[0].Members, ShouldResemble, []string{"Alice", "Bob"})
			})
		})

		Convey("When the server rejects the upload", func() {
			_, err := c.Submit(ctx, "Shellfish", "Alice", "preds.txt", strings.NewReader("id,Rings\n1,10\n"))

			Convey("Then an APIError carries the status and message", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
				So(apiErr.Message, ShouldEqual, "Only .csv files are allowed")
			})
		})
	})

	Convey("Given a server that is not listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := client.New(url, client.WithTimeout(time.Second))

		Convey("Then requests fail with ErrRequest", func() {
			_, err := c.Leaderboard(context.Background())
			So(errors.Is(err, client.ErrRequest), ShouldBeTrue)
		})
	})
}
