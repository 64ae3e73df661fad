package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/archive"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/storage"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/logger"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/metrics"
)

// DefaultTimezone is the reference timezone for month boundaries.
const DefaultTimezone = "America/New_York"

// TOMLStore is a Store backed by a single TOML document on disk.
//
// Every mutation follows read-entire-state, rollover check, modify,
// archive mirror, atomic write. One mutex per store instance makes
// mutations atomic with respect to each other; reads go straight to
// the file and rely on atomic replacement to never observe a torn
// document. Two processes sharing one file are not supported.
type TOMLStore struct {
	mu      sync.Mutex
	path    string
	archive *archive.Manager
	loc     *time.Location
	now     func() time.Time
	log     logger.Logger
}

var _ Store = (*TOMLStore)(nil)

// NewTOMLStore opens the store at path, creating an empty database
// document when none exists yet.
func NewTOMLStore(ctx context.Context, path string, arch *archive.Manager, opts ...Option) (*TOMLStore, error) {
	s := &TOMLStore{
		path:    path,
		archive: arch,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loc == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", DefaultTimezone, err)
		}
		s.loc = loc
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat database file %s: %w", path, err)
		}
		if err := s.write(model.NewSnapshot()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SubmitTime implements Store.
func (s *TOMLStore) SubmitTime(ctx context.Context, user model.UserID, course model.CourseID, t racetime.Time, advanced bool) error {
	if !course.Valid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidCourse, course)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return err
	}
	now := s.now().In(s.loc)
	if err := s.rollover(ctx, state, now); err != nil {
		return err
	}

	rec := state.Touch(user)
	if !t.Better(rec[course].Time) {
		return fmt.Errorf("%w: %s vs stored %s on course %d",
			ErrNotAnImprovement, t, rec[course].Time, course)
	}
	rec[course] = model.CourseEntry{Time: t, Advanced: advanced}
	state.LastUpdated = now

	return s.commit(ctx, state)
}

// RegisterUser implements Store.
func (s *TOMLStore) RegisterUser(ctx context.Context, user model.UserID) error {
	return s.register(ctx, []model.UserID{user})
}

// RegisterUsers implements Store.
func (s *TOMLStore) RegisterUsers(ctx context.Context, users []model.UserID) error {
	if len(users) == 0 {
		return ErrNoUsers
	}
	return s.register(ctx, users)
}

func (s *TOMLStore) register(ctx context.Context, users []model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return err
	}
	now := s.now().In(s.loc)
	if err := s.rollover(ctx, state, now); err != nil {
		return err
	}

	// Already-registered users are a no-op but the document is still
	// re-persisted, keeping the live archive mirror fresh.
	for _, user := range users {
		state.Register(user)
	}
	state.LastUpdated = now

	if err := s.commit(ctx, state); err != nil {
		return err
	}
	metrics.UpdateRegisteredUsers(len(state.Registered))
	return nil
}

// RegisteredUsers implements Store.
func (s *TOMLStore) RegisteredUsers(ctx context.Context) ([]model.UserID, error) {
	state, err := s.read()
	if err != nil {
		return nil, err
	}
	return state.Registered, nil
}

// Snapshot implements Store.
func (s *TOMLStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.read()
}

// rollover archives and resets the state in place when now has crossed
// into a new calendar month since the last mutation. The pre-reset
// state is finalized under the completed month's key before any times
// are cleared; the registrant list survives the reset.
func (s *TOMLStore) rollover(ctx context.Context, state *model.Snapshot, now time.Time) error {
	if state.LastUpdated.IsZero() {
		return nil
	}
	last := state.LastUpdated.In(s.loc)
	if last.Year() == now.Year() && last.Month() == now.Month() {
		return nil
	}

	if s.log != nil {
		s.log.Info(ctx, "new month detected, resetting all times",
			logger.String("completed", archive.PeriodOf(last).String()),
			logger.String("current", archive.PeriodOf(now).String()),
		)
	}
	if err := s.archive.Backup(ctx, state, archive.PeriodOf(last)); err != nil {
		return err
	}

	state.ResetTimes()
	state.LastUpdated = now
	metrics.RecordRollover()
	return s.commit(ctx, state)
}

// commit mirrors the state to the in-progress month's archive and then
// durably replaces the live document. The mirror write happens first
// so a crash between the two steps loses at most the newest mutation
// from the archive, never from the live file it was derived from.
func (s *TOMLStore) commit(ctx context.Context, state *model.Snapshot) error {
	if err := s.archive.Backup(ctx, state, archive.PeriodOf(state.LastUpdated)); err != nil {
		return err
	}
	return s.write(state)
}

func (s *TOMLStore) read() (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read database file %s: %w", s.path, err)
	}
	snap, err := storage.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("database file %s: %w", s.path, err)
	}
	return snap, nil
}

func (s *TOMLStore) write(state *model.Snapshot) error {
	data, err := storage.EncodeSnapshot(state)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := storage.WriteFileAtomic(s.path, data); err != nil {
		return err
	}
	metrics.RecordStorageWrite(float64(time.Since(start).Milliseconds()))
	return nil
}
