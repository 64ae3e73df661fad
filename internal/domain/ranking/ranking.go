// Package ranking builds display-ready standings from a store snapshot.
// It is read-only and works identically on live and archived snapshots.
package ranking

import (
	"fmt"
	"sort"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
)

// AdvancedTag is appended to the rendered time of a harder-mode completion.
const AdvancedTag = " (Advanced Completion)"

// MaxPlacements caps the number of ranked placements on a board.
const MaxPlacements = 3

// Entry is one registrant's result on the queried course.
type Entry struct {
	User     model.UserID
	Time     racetime.Time
	Advanced bool
}

// Display renders the entry's time, tagged when it was an advanced
// completion. The tag never affects ordering.
func (e Entry) Display() string {
	if e.Advanced {
		return e.Time.String() + AdvancedTag
	}
	return e.Time.String()
}

// Board is the full standing for one course: every registered user's
// entry plus the numeric best time. Best is the sentinel when nobody
// has submitted a real time yet.
type Board struct {
	Course  model.CourseID
	Entries map[model.UserID]Entry
	Best    racetime.Time
}

// HasSubmissions reports whether any registrant has a real time.
func (b Board) HasSubmissions() bool {
	return !b.Best.IsSentinel()
}

// Placement is one ranked row of the top-of-board summary.
type Placement struct {
	Rank     int
	User     model.UserID
	Time     racetime.Time
	Advanced bool
}

// Display renders the placement's time, tagged when it was an
// advanced completion.
func (p Placement) Display() string {
	if p.Advanced {
		return p.Time.String() + AdvancedTag
	}
	return p.Time.String()
}

// Leaderboard produces the board for one course from a snapshot. Every
// registered user appears, at the sentinel time if they have not
// submitted. Registered users always have a record, but a snapshot
// edited by hand may violate that; missing records read as sentinel.
func Leaderboard(snap *model.Snapshot, course model.CourseID) (Board, error) {
	if !course.Valid() {
		return Board{}, fmt.Errorf("%w: %d", model.ErrInvalidCourse, course)
	}
	board := Board{
		Course:  course,
		Entries: make(map[model.UserID]Entry, len(snap.Registered)),
		Best:    racetime.Sentinel(),
	}
	for _, id := range snap.Registered {
		entry := Entry{User: id, Time: racetime.Sentinel()}
		if rec, ok := snap.Users[id]; ok {
			ce := rec[course]
			entry.Time = ce.Time
			entry.Advanced = ce.Advanced
		}
		board.Entries[id] = entry
		if entry.Time.Better(board.Best) {
			board.Best = entry.Time
		}
	}
	return board, nil
}

// TopThree ranks the board's best non-sentinel entries, at most three.
// Ties are broken by ascending UserID so standings are deterministic;
// an all-sentinel board yields an empty slice.
func TopThree(board Board) []Placement {
	ranked := make([]Entry, 0, len(board.Entries))
	for _, e := range board.Entries {
		if e.Time.IsSentinel() {
			continue
		}
		ranked = append(ranked, e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Time.Compare(ranked[j].Time); c != 0 {
			return c < 0
		}
		return ranked[i].User < ranked[j].User
	})
	if len(ranked) > MaxPlacements {
		ranked = ranked[:MaxPlacements]
	}
	placements := make([]Placement, len(ranked))
	for i, e := range ranked {
		placements[i] = Placement{Rank: i + 1, User: e.User, Time: e.Time, Advanced: e.Advanced}
	}
	return placements
}
