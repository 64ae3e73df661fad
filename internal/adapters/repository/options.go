package repository

import (
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/pkg/logger"
)

// Option applies a configuration option to the TOMLStore.
type Option func(*TOMLStore)

// WithClock overrides the wall-clock source, used by tests to steer
// the rollover check across month boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *TOMLStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the fixed timezone month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *TOMLStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets a logger for store events such as rollovers.
func WithLogger(log logger.Logger) Option {
	return func(s *TOMLStore) {
		if log != nil {
			s.log = log
		}
	}
}
