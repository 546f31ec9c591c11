package smoke

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/shopapi/internal/adapters/http/api"
	service "github.com/okian/shopapi/internal/app"
	"github.com/okian/shopapi/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startServer(t *testing.T, opts ...service.Option) *httptest.Server {
	t.Helper()
	opts = append(opts, service.WithDatabasePath(filepath.Join(t.TempDir(), "app.sqlite")))
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(svc, svc).Handler(context.Background()))
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running shopapi server", t, func() {
		srv := startServer(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When the smoke test runs", func() {
			stats, err := Run(ctx, &Config{BaseURL: srv.URL, Products: 15, Users: 10, Workers: 4, Timeout: 5 * time.Second})

			Convey("Then every lifecycle step succeeds", func() {
				So(err, ShouldBeNil)
				So(stats.Failures(), ShouldEqual, 0)
				So(stats.Products.Created.Load(), ShouldEqual, 15)
				So(stats.Products.Missing.Load(), ShouldEqual, 15)
				So(stats.Users.Deleted.Load(), ShouldEqual, 10)
				So(stats.Listed, ShouldEqual, 25)
			})
		})
	})

	Convey("Given a server that hashes passwords", t, func() {
		srv := startServer(t, service.WithBcryptCost(bcrypt.MinCost))

		Convey("When the smoke test runs", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, Products: 1, Users: 3, Workers: 2, Timeout: 5 * time.Second})

			Convey("Then hashed passwords are not reported as mismatches", func() {
				So(err, ShouldBeNil)
				So(stats.Users.Updated.Load(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a server that answers 500 to writes", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte("[]"))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		Convey("When the smoke test runs", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, Products: 2, Users: 2, Workers: 2, Timeout: time.Second})

			Convey("Then the failures are counted and reported", func() {
				So(errors.Is(err, ErrChecksFailed), ShouldBeTrue)
				So(stats.Products.Failed.Load(), ShouldEqual, 2)
				So(stats.Users.Failed.Load(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an unreachable server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When the smoke test runs", func() {
			_, err := Run(context.Background(), &Config{BaseURL: url, Products: 1, Users: 1, Workers: 1, Timeout: time.Second})

			Convey("Then the health check fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}

func TestForEach(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		var calls atomic.Int64

		Convey("When processing more items than workers", func() {
			forEach(context.Background(), 3, 50, func(int) { calls.Add(1) })

			Convey("Then every item is visited once", func() {
				So(calls.Load(), ShouldEqual, 50)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			forEach(ctx, 3, 50, func(int) { calls.Add(1) })

			Convey("Then no item is processed", func() {
				So(calls.Load(), ShouldEqual, 0)
			})
		})
	})
}

func TestGenerators(t *testing.T) {
	Convey("Given generated users", t, func() {
		users := generateUsers(20)

		Convey("Then emails and card numbers are unique", func() {
			emails := map[string]bool{}
			cards := map[int64]bool{}
			for _, u := range users {
				emails[u.Email] = true
				cards[u.CardNumber] = true
			}
			So(len(emails), ShouldEqual, 20)
			So(len(cards), ShouldEqual, 20)
		})
	})

	Convey("Given a generated product", t, func() {
		p := generateProducts(1)[0]

		Convey("Then mutation changes it", func() {
			So(mutateProduct(p), ShouldNotResemble, p)
		})
	})
}

func TestSameUser(t *testing.T) {
	Convey("Given a user and the stored copy", t, func() {
		want := generateUsers(1)[0]
		got := want
		got.Password = "$2a$04$hashed"

		Convey("Then a different password still matches", func() {
			So(sameUser(want, got), ShouldBeTrue)
		})

		Convey("Then any other difference does not", func() {
			got.FirstName = want.FirstName + "x"
			So(sameUser(want, got), ShouldBeFalse)
		})
	})
}
