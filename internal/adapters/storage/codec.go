// Package storage implements the durable representation of the store
// state: a human-editable TOML document plus atomic file replacement.
//
// Document shape:
//
//	last_updated = 1688169600
//	registered_users = ["995310680909549598"]
//
//	[995310680909549598]
//	  [995310680909549598.course_1]
//	    time = "99:99.99"
//	    advanced = false
//	  ... course_2 .. course_7 identical shape
package storage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/racetime"
)

// Top-level document keys. Every other top-level table is a user id.
const (
	keyLastUpdated = "last_updated"
	keyRegistered  = "registered_users"
)

const coursePrefix = "course_"

// courseEntry is the wire form of one course's best result.
type courseEntry struct {
	Time     racetime.Time `toml:"time"`
	Advanced bool          `toml:"advanced"`
}

// EncodeSnapshot renders the snapshot as a TOML document.
func EncodeSnapshot(snap *model.Snapshot) ([]byte, error) {
	doc := make(map[string]interface{}, len(snap.Users)+2)

	var unix int64
	if !snap.LastUpdated.IsZero() {
		unix = snap.LastUpdated.Unix()
	}
	doc[keyLastUpdated] = unix

	registered := make([]string, len(snap.Registered))
	for i, id := range snap.Registered {
		registered[i] = string(id)
	}
	doc[keyRegistered] = registered

	for id, rec := range snap.Users {
		table := make(map[string]courseEntry, len(rec))
		for _, c := range model.Courses() {
			table[courseKey(c)] = courseEntry{Time: rec[c].Time, Advanced: rec[c].Advanced}
		}
		doc[string(id)] = table
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode database document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a TOML document back into a snapshot. Records
// are rebuilt with sentinel entries for any course a user table omits,
// and every registered user is guaranteed a record.
func DecodeSnapshot(data []byte) (*model.Snapshot, error) {
	raw := make(map[string]toml.Primitive)
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	snap := model.NewSnapshot()

	if prim, ok := raw[keyLastUpdated]; ok {
		var unix int64
		if err := md.PrimitiveDecode(prim, &unix); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, keyLastUpdated, err)
		}
		if unix != 0 {
			snap.LastUpdated = time.Unix(unix, 0)
		}
	}

	if prim, ok := raw[keyRegistered]; ok {
		var ids []string
		if err := md.PrimitiveDecode(prim, &ids); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, keyRegistered, err)
		}
		for _, id := range ids {
			snap.Register(model.UserID(id))
		}
	}

	for key, prim := range raw {
		if key == keyLastUpdated || key == keyRegistered {
			continue
		}
		table := make(map[string]courseEntry)
		if err := md.PrimitiveDecode(prim, &table); err != nil {
			return nil, fmt.Errorf("%w: user table %q: %v", ErrCorrupted, key, err)
		}
		rec := snap.Touch(model.UserID(key))
		for courseName, entry := range table {
			course, err := parseCourseKey(courseName)
			if err != nil {
				return nil, fmt.Errorf("%w: user table %q: %v", ErrCorrupted, key, err)
			}
			rec[course] = model.CourseEntry{Time: entry.Time, Advanced: entry.Advanced}
		}
	}

	return snap, nil
}

// courseKey renders a course id as its table key, e.g. "course_3".
func courseKey(c model.CourseID) string {
	return coursePrefix + strconv.Itoa(int(c))
}

// parseCourseKey inverts courseKey, rejecting ids outside the course set.
func parseCourseKey(key string) (model.CourseID, error) {
	num, ok := strings.CutPrefix(key, coursePrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected course key %q", key)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("unexpected course key %q", key)
	}
	course := model.CourseID(n)
	if !course.Valid() {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidCourse, n)
	}
	return course, nil
}
