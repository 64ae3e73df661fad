// Package repository defines the best-times store interface and errors.
package repository

import (
	"context"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
)

// Store is the single source of truth for per-user per-course best
// times. Implementations enforce monotonic improvement and perform the
// monthly rollover before applying any mutation.
type Store interface {
	// SubmitTime records a new best for (user, course) iff the time is
	// strictly better than the stored one. A user submitting for the
	// first time gets a record with sentinel entries on every course,
	// so any real time is accepted. Equal or worse times are rejected
	// with ErrNotAnImprovement and leave durable state untouched.
	SubmitTime(ctx context.Context, user model.UserID, course model.CourseID, t racetime.Time, advanced bool) error

	// RegisterUser opts a user in to leaderboard displays, creating a
	// sentinel record if the user was never touched. Idempotent; an
	// already registered user still triggers a re-persist.
	RegisterUser(ctx context.Context, user model.UserID) error

	// RegisterUsers registers a batch of users in one mutation.
	// An empty batch is rejected with ErrNoUsers.
	RegisterUsers(ctx context.Context, users []model.UserID) error

	// RegisteredUsers returns the current registrant list, freshly
	// read from durable storage.
	RegisteredUsers(ctx context.Context) ([]model.UserID, error)

	// Snapshot returns the full store state, always re-read from
	// durable storage so external edits are visible.
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}
