package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/archive"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/repository"
	service "github.com/osfanbuff63/pkw-tracking-bot/internal/app"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	logger.Init()
}

// startService brings up a service over a temp directory, pinned to
// UTC with a controllable clock.
func startService(t *testing.T, now *time.Time) *service.Service {
	t.Helper()
	dir := t.TempDir()
	svc := service.New(
		service.WithDataFile(filepath.Join(dir, "database.toml")),
		service.WithTimezone("UTC"),
		service.WithClock(func() time.Time { return *now }),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a configured service", t, func() {
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		svc := startService(t, &now)

		Convey("When starting it a second time", func() {
			err := svc.Start(context.Background())

			Convey("Then the second start is a no-op", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When stopping it", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})

	Convey("Given a bogus timezone", t, func() {
		svc := service.New(service.WithTimezone("Atlantis/Lost"))

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceSubmitAndLeaderboard(t *testing.T) {
	Convey("Given a service with three registrants", t, func() {
		ctx := context.Background()
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		svc := startService(t, &now)

		So(svc.RegisterUsers(ctx, []model.UserID{"alice", "bob", "carol"}), ShouldBeNil)

		Convey("When two of them submit times on a course", func() {
			So(svc.SubmitTime(ctx, "alice", 2, "01:30.00", false), ShouldBeNil)
			So(svc.SubmitTime(ctx, "bob", 2, "1:20", true), ShouldBeNil)

			Convey("Then the board covers all registrants with the right best", func() {
				board, top, err := svc.Leaderboard(ctx, 2)
				So(err, ShouldBeNil)
				So(len(board.Entries), ShouldEqual, 3)
				So(board.Best.String(), ShouldEqual, "01:20.00")
				So(board.Entries["carol"].Time.IsSentinel(), ShouldBeTrue)

				So(len(top), ShouldEqual, 2)
				So(top[0].User, ShouldEqual, model.UserID("bob"))
				So(top[0].Display(), ShouldEqual, "01:20.00 (Advanced Completion)")
				So(top[1].User, ShouldEqual, model.UserID("alice"))
			})
		})

		Convey("When a slower time is submitted over a faster one", func() {
			So(svc.SubmitTime(ctx, "alice", 2, "01:30.00", false), ShouldBeNil)
			err := svc.SubmitTime(ctx, "alice", 2, "01:35.00", false)

			Convey("Then the submission is refused", func() {
				So(err, ShouldWrap, repository.ErrNotAnImprovement)
			})
		})

		Convey("When the submitted time does not parse", func() {
			err := svc.SubmitTime(ctx, "alice", 2, "fast", false)

			Convey("Then the submission is refused", func() {
				So(err, ShouldWrap, racetime.ErrInvalidTime)
			})
		})

		Convey("When the course is outside the fixed set", func() {
			submitErr := svc.SubmitTime(ctx, "alice", 0, "01:30.00", false)
			_, _, boardErr := svc.Leaderboard(ctx, 8)

			Convey("Then both paths refuse the course", func() {
				So(submitErr, ShouldWrap, model.ErrInvalidCourse)
				So(boardErr, ShouldWrap, model.ErrInvalidCourse)
			})
		})

		Convey("When registering an empty batch", func() {
			err := svc.RegisterUsers(ctx, nil)

			Convey("Then it is refused", func() {
				So(err, ShouldWrap, repository.ErrNoUsers)
			})
		})

		Convey("When listing registrants", func() {
			users, err := svc.RegisteredUsers(ctx)

			Convey("Then registration order is preserved", func() {
				So(err, ShouldBeNil)
				So(users, ShouldResemble, []model.UserID{"alice", "bob", "carol"})
			})
		})
	})
}

func TestServiceArchivedLeaderboard(t *testing.T) {
	Convey("Given a service whose clock crosses a month boundary", t, func() {
		ctx := context.Background()
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		svc := startService(t, &now)

		So(svc.RegisterUsers(ctx, []model.UserID{"alice", "bob"}), ShouldBeNil)
		So(svc.SubmitTime(ctx, "alice", 4, "01:10.00", false), ShouldBeNil)

		now = time.Date(2023, time.July, 2, 8, 0, 0, 0, time.UTC)
		So(svc.SubmitTime(ctx, "bob", 4, "01:50.00", false), ShouldBeNil)

		Convey("When querying June's archived standings", func() {
			board, top, err := svc.ArchivedLeaderboard(ctx, 4, 2023, time.June)

			Convey("Then the finalized June board is returned", func() {
				So(err, ShouldBeNil)
				So(board.Best.String(), ShouldEqual, "01:10.00")
				So(len(top), ShouldEqual, 1)
				So(top[0].User, ShouldEqual, model.UserID("alice"))
			})
		})

		Convey("When querying the live board", func() {
			board, _, err := svc.Leaderboard(ctx, 4)

			Convey("Then only July's submissions count", func() {
				So(err, ShouldBeNil)
				So(board.Best.String(), ShouldEqual, "01:50.00")
				So(board.Entries["alice"].Time.IsSentinel(), ShouldBeTrue)
			})
		})

		Convey("When querying a period with no recorded activity", func() {
			_, _, err := svc.ArchivedLeaderboard(ctx, 4, 2020, time.March)

			Convey("Then it reports the archive as missing", func() {
				So(err, ShouldWrap, archive.ErrNotFound)
			})
		})
	})
}
