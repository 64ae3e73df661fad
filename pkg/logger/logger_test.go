package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogging(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info with fields", func() {
			Get().Info(ctx, "user registered", String("user", "100"), Int("count", 3))

			Convey("Then the message and fields are rendered", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "user registered")
				So(out, ShouldContainSubstring, "user=100")
				So(out, ShouldContainSubstring, "count=3")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When logging at debug under the default level", func() {
			Get().Debug(ctx, "should be suppressed")

			Convey("Then nothing is emitted", func() {
				So(buf.String(), ShouldBeEmpty)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(ctx, "now visible", Bool("advanced", true))

			Convey("Then debug output appears", func() {
				So(buf.String(), ShouldContainSubstring, "now visible")
				So(buf.String(), ShouldContainSubstring, "advanced=true")
			})
		})

		Convey("When logging an error field", func() {
			Get().Error(ctx, "write failed", Error(errors.New("disk full")))

			Convey("Then the error is rendered", func() {
				So(buf.String(), ShouldContainSubstring, "disk full")
			})
		})

		Convey("When using a named logger", func() {
			Named("storage").Warn(ctx, "slow write")

			Convey("Then output carries the group", func() {
				So(buf.String(), ShouldContainSubstring, "slow write")
				So(buf.String(), ShouldContainSubstring, "storage.")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		Convey("When parsing known names", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When parsing an unknown name", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestFileOutput(t *testing.T) {
	Convey("Given a logger teed to a file", t, func() {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "tracker.log")
		So(Init(WithWriter(&buf), WithFile(path)), ShouldBeNil)

		Convey("When logging and syncing", func() {
			Get().Info(context.Background(), "persisted line")
			So(Sync(), ShouldBeNil)

			Convey("Then the line landed in both outputs", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "persisted line")
				So(buf.String(), ShouldContainSubstring, "persisted line")
			})

			Convey("And a second sync is a no-op", func() {
				So(Sync(), ShouldBeNil)
			})
		})
	})

	Convey("Given an unwritable log path", t, func() {
		err := Init(WithFile(filepath.Join(t.TempDir(), "missing", "tracker.log")))

		Convey("Then Init reports the failure", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
