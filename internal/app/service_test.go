package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/shopapi/internal/adapters/repository"
	service "github.com/okian/shopapi/internal/app"
	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.sqlite")
	return service.New(append([]service.Option{service.WithDatabasePath(path)}, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDatabasePath("shop.sqlite"),
			service.WithMaxOpenConns(4),
			service.WithBusyTimeout(time.Second),
			service.WithBcryptCost(10),
			service.WithLogger(logger.Nop()),
		)

		Convey("Then the options show up in stats", func() {
			stats, err := svc.GetStats(context.Background())
			So(err, ShouldBeNil)
			So(stats["databasePath"], ShouldEqual, "shop.sqlite")
			So(stats["maxOpenConns"], ShouldEqual, 4)
			So(stats["hashPasswords"], ShouldEqual, true)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(t)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When calling it before Start", func() {
			_, err := svc.ListProducts(ctx)

			Convey("Then ErrNotStarted is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(svc.Ping(ctx), service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.Ping(ctx), ShouldBeNil)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
				So(stats["products"], ShouldEqual, 0)
				So(stats["users"], ShouldEqual, 0)
			})
		})

		Convey("When stopping a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats["started"], ShouldEqual, false)
				_, err = svc.GetProduct(ctx, 1)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a database path in a missing directory", t, func() {
		svc := service.New(service.WithDatabasePath(filepath.Join(t.TempDir(), "missing", "app.sqlite")))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the open error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "open store")
			})
		})
	})
}

func TestService_PassThrough(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When creating rows", func() {
			p, err := svc.CreateProduct(ctx, model.Product{Title: "Mug", Price: 3})
			So(err, ShouldBeNil)
			u, err := svc.CreateUser(ctx, model.User{Email: "ada@example.com", CardNumber: 1})
			So(err, ShouldBeNil)

			Convey("Then stats count them", func() {
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats["products"], ShouldEqual, 1)
				So(stats["users"], ShouldEqual, 1)
			})

			Convey("And they can be read, updated and deleted", func() {
				got, err := svc.GetProduct(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, p)

				u.FirstName = "Ada"
				updated, err := svc.UpdateUser(ctx, u.ID, u)
				So(err, ShouldBeNil)
				So(updated.FirstName, ShouldEqual, "Ada")

				users, err := svc.ListUsers(ctx)
				So(err, ShouldBeNil)
				So(len(users), ShouldEqual, 1)

				_, err = svc.DeleteProduct(ctx, p.ID)
				So(err, ShouldBeNil)
				_, err = svc.DeleteUser(ctx, u.ID)
				So(err, ShouldBeNil)

				products, err := svc.ListProducts(ctx)
				So(err, ShouldBeNil)
				So(products, ShouldBeEmpty)
			})

			Convey("And repository errors pass through unchanged", func() {
				_, err := svc.CreateUser(ctx, model.User{Email: "ada@example.com", CardNumber: 2})
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)

				_, err = svc.UpdateProduct(ctx, 999, model.Product{})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				_, err = svc.GetUser(ctx, 999)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_WithStore(t *testing.T) {
	Convey("Given a service handed an open store", t, func() {
		ctx := context.Background()
		store, err := repository.Open(ctx, filepath.Join(t.TempDir(), "app.sqlite"))
		So(err, ShouldBeNil)

		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the store is closed", func() {
				So(store.Ping(ctx), ShouldNotBeNil)
			})
		})
	})
}
