// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/archive"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/repository"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/ranking"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/logger"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/metrics"
)

// Rejection reasons used for metrics labels.
const (
	reasonInvalidCourse    = "invalid_course"
	reasonInvalidTime      = "invalid_time"
	reasonNotAnImprovement = "not_an_improvement"
)

// Service implements the leaderboard operations consumed by the
// collaborator layer: submit, register, live and archived standings.
type Service struct {
	mu sync.Mutex

	// Core components
	store   repository.Store
	archive *archive.Manager

	// Configuration
	dataFile   string
	archiveDir string
	timezone   string
	clock      func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataFile sets the path of the live database document.
func WithDataFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataFile = path
		}
	}
}

// WithArchiveDir sets the base directory for monthly archives.
func WithArchiveDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.archiveDir = dir
		}
	}
}

// WithTimezone sets the IANA zone month boundaries are computed in.
func WithTimezone(tz string) Option {
	return func(s *Service) {
		if tz != "" {
			s.timezone = tz
		}
	}
}

// WithClock overrides the wall-clock source; tests use it to cross
// month boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataFile: "database.toml",
		timezone: repository.DefaultTimezone,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.archiveDir == "" {
		s.archiveDir = filepath.Dir(s.dataFile)
	}
	return s
}

// Start opens the store and prepares the archive manager.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.timezone, err)
	}

	s.archive = archive.NewManager(s.archiveDir, filepath.Base(s.dataFile))
	store, err := repository.NewTOMLStore(ctx, s.dataFile, s.archive,
		repository.WithLocation(loc),
		repository.WithClock(s.clock),
		repository.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	s.store = store

	s.started = true
	s.logger.Info(ctx, "tracker service started",
		logger.String("data_file", s.dataFile),
		logger.String("archive_dir", s.archiveDir),
		logger.String("timezone", s.timezone),
	)
	return nil
}

// Stop shuts the service down. The store holds no open handles, so
// this only flips state and logs.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "tracker service stopped")
}

// SubmitTime validates and records a submission for the acting user.
// rawTime is caller-supplied text such as "1:30" or "01:30.00".
func (s *Service) SubmitTime(ctx context.Context, actor model.UserID, course int, rawTime string, advanced bool) error {
	courseID := model.CourseID(course)
	if !courseID.Valid() {
		metrics.RecordSubmissionRejected(reasonInvalidCourse)
		return fmt.Errorf("%w: %d", model.ErrInvalidCourse, course)
	}
	t, err := racetime.Parse(rawTime)
	if err != nil {
		metrics.RecordSubmissionRejected(reasonInvalidTime)
		return err
	}

	s.logger.Debug(ctx, "time submitted",
		logger.String("user", string(actor)),
		logger.Int("course", course),
		logger.String("time", t.String()),
		logger.Bool("advanced", advanced),
	)

	if err := s.store.SubmitTime(ctx, actor, courseID, t, advanced); err != nil {
		if errors.Is(err, repository.ErrNotAnImprovement) {
			metrics.RecordSubmissionRejected(reasonNotAnImprovement)
		}
		return err
	}
	metrics.RecordSubmissionAccepted(strconv.Itoa(course))
	return nil
}

// RegisterUser opts a single user in to leaderboard displays.
func (s *Service) RegisterUser(ctx context.Context, actor model.UserID) error {
	if err := s.store.RegisterUser(ctx, actor); err != nil {
		return err
	}
	s.logger.Info(ctx, "user registered", logger.String("user", string(actor)))
	return nil
}

// RegisterUsers opts a batch of users in, in one mutation.
func (s *Service) RegisterUsers(ctx context.Context, users []model.UserID) error {
	if err := s.store.RegisterUsers(ctx, users); err != nil {
		return err
	}
	s.logger.Info(ctx, "users registered", logger.Int("count", len(users)))
	return nil
}

// RegisteredUsers returns the current registrant list.
func (s *Service) RegisteredUsers(ctx context.Context) ([]model.UserID, error) {
	return s.store.RegisteredUsers(ctx)
}

// Leaderboard builds the standings for a course from the live store.
func (s *Service) Leaderboard(ctx context.Context, course int) (ranking.Board, []ranking.Placement, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return ranking.Board{}, nil, err
	}
	return buildBoard(snap, course)
}

// ArchivedLeaderboard builds the standings for a course from a past
// period's archive. Periods with no recorded activity yield
// archive.ErrNotFound.
func (s *Service) ArchivedLeaderboard(ctx context.Context, course, year int, month time.Month) (ranking.Board, []ranking.Placement, error) {
	snap, err := s.archive.Load(ctx, archive.Period{Year: year, Month: month})
	if err != nil {
		return ranking.Board{}, nil, err
	}
	return buildBoard(snap, course)
}

func buildBoard(snap *model.Snapshot, course int) (ranking.Board, []ranking.Placement, error) {
	board, err := ranking.Leaderboard(snap, model.CourseID(course))
	if err != nil {
		return ranking.Board{}, nil, err
	}
	metrics.RecordLeaderboardQuery()
	return board, ranking.TopThree(board), nil
}
