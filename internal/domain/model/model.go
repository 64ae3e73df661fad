// Package model contains the domain types shared between the store,
// the archive and the ranking engine.
package model

import (
	"time"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
)

// UserID is the opaque identity of a competitor. The platform adapter
// is responsible for reducing whatever user object it receives to a
// stable string before it reaches the store.
type UserID string

// CourseID identifies one of the fixed competition courses.
type CourseID int

// The competition runs a fixed set of seven courses.
const (
	MinCourse CourseID = 1
	MaxCourse CourseID = 7
)

// Valid reports whether the course id is within the fixed course set.
func (c CourseID) Valid() bool {
	return c >= MinCourse && c <= MaxCourse
}

// Courses returns all course ids in ascending order.
func Courses() []CourseID {
	out := make([]CourseID, 0, MaxCourse-MinCourse+1)
	for c := MinCourse; c <= MaxCourse; c++ {
		out = append(out, c)
	}
	return out
}

// CourseEntry is one user's best result on one course. Advanced marks
// a harder-mode completion; it never participates in time comparison.
type CourseEntry struct {
	Time     racetime.Time
	Advanced bool
}

// Record holds a user's entries for every course. There is exactly one
// entry per course; entries start at the sentinel time.
type Record map[CourseID]CourseEntry

// NewRecord builds a record with sentinel entries for all courses.
func NewRecord() Record {
	r := make(Record, len(Courses()))
	for _, c := range Courses() {
		r[c] = CourseEntry{Time: racetime.Sentinel()}
	}
	return r
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for c, e := range r {
		out[c] = e
	}
	return out
}

// Snapshot is the full durable state of the store at one instant.
type Snapshot struct {
	// Users maps every user ever touched to their per-course bests.
	Users map[UserID]Record

	// Registered lists users opted in to leaderboard displays, in the
	// order they registered. Every registered user has a Record.
	Registered []UserID

	// LastUpdated is the instant of the most recent mutation, in the
	// store's fixed timezone. Used to detect calendar-month rollover.
	LastUpdated time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Users: make(map[UserID]Record)}
}

// IsRegistered reports whether the user appears in the registrant list.
func (s *Snapshot) IsRegistered(id UserID) bool {
	for _, r := range s.Registered {
		if r == id {
			return true
		}
	}
	return false
}

// Register adds the user to the registrant list, creating a sentinel
// record if the user was never touched before. Registering an already
// registered user is a no-op. Returns true when membership changed.
func (s *Snapshot) Register(id UserID) bool {
	s.Touch(id)
	if s.IsRegistered(id) {
		return false
	}
	s.Registered = append(s.Registered, id)
	return true
}

// Touch ensures a record exists for the user, creating an all-sentinel
// one on first contact. Returns the user's record.
func (s *Snapshot) Touch(id UserID) Record {
	if s.Users == nil {
		s.Users = make(map[UserID]Record)
	}
	rec, ok := s.Users[id]
	if !ok {
		rec = NewRecord()
		s.Users[id] = rec
	}
	return rec
}

// ResetTimes clears every record back to sentinel entries while keeping
// user records and the registrant list intact. Called at rollover.
func (s *Snapshot) ResetTimes() {
	for id := range s.Users {
		s.Users[id] = NewRecord()
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Users:       make(map[UserID]Record, len(s.Users)),
		Registered:  append([]UserID(nil), s.Registered...),
		LastUpdated: s.LastUpdated,
	}
	for id, rec := range s.Users {
		out.Users[id] = rec.Clone()
	}
	return out
}
