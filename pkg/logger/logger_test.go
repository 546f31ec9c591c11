package logger

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		err := Init()
		So(err, ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Then Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			So(func() { l.Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
		})

		Convey("Then Named returns a child logger", func() {
			named := Named("test")
			So(named, ShouldNotBeNil)
			So(func() { named.Debug(context.Background(), "test message") }, ShouldNotPanic)
		})
	})
}

func TestLoggerFields(t *testing.T) {
	Convey("Given a logger backed by an observer core", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		InitWithCore(core)

		Convey("When logging with fields and a request id in context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Get().Named("api").Warn(ctx, "something happened",
				String("resource", "product"),
				Int("status", 404),
				Int64("id", 7),
				Error(errors.New("boom")),
			)

			Convey("Then the entry carries every field", func() {
				So(logs.Len(), ShouldEqual, 1)
				entry := logs.All()[0]
				So(entry.Message, ShouldEqual, "something happened")
				So(entry.LoggerName, ShouldEqual, "api")
				So(entry.Level, ShouldEqual, zapcore.WarnLevel)

				fields := entry.ContextMap()
				So(fields["resource"], ShouldEqual, "product")
				So(fields["status"], ShouldEqual, int64(404))
				So(fields["id"], ShouldEqual, int64(7))
				So(fields["error"], ShouldEqual, "boom")
				So(fields["request_id"], ShouldEqual, "req-1")
			})
		})

		Convey("When the context has no request id", func() {
			Get().Info(context.Background(), "plain")

			Convey("Then no request_id field is added", func() {
				So(logs.Len(), ShouldEqual, 1)
				_, ok := logs.All()[0].ContextMap()["request_id"]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		defer SetLevel(zapcore.InfoLevel)

		cases := map[string]zapcore.Level{
			"debug":   zapcore.DebugLevel,
			"INFO":    zapcore.InfoLevel,
			"":        zapcore.InfoLevel,
			"warn":    zapcore.WarnLevel,
			"Warning": zapcore.WarnLevel,
			" error ": zapcore.ErrorLevel,
		}
		for in, want := range cases {
			So(SetLevelString(in), ShouldBeNil)
			So(Level(), ShouldEqual, want)
		}

		Convey("Then an unknown level is rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log level")
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a context without a request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")

		Convey("Then WithRequestID stores it", func() {
			ctx := WithRequestID(context.Background(), "abc")
			So(RequestID(ctx), ShouldEqual, "abc")
		})
	})
}
