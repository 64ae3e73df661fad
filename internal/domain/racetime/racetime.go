// Package racetime implements the race-completion time value.
//
// A Time is either a real duration, rendered as MM:SS.CC (minutes,
// seconds, hundredths), or the sentinel meaning "no time recorded".
// The sentinel orders worse than every real time, so a first real
// submission always improves on it. Comparison is numeric, never a
// string compare on the rendered form.
package racetime

import (
	"fmt"
	"strings"
)

// SentinelLiteral is the rendered form of the unset time.
const SentinelLiteral = "99:99.99"

const (
	maxMinutes    = 99
	maxSeconds    = 59
	maxHundredths = 99
	centisPerSec  = 100
	centisPerMin  = 60 * centisPerSec
	decimalBase   = 10
)

// Time is a totally ordered race-completion time.
// The zero value is the sentinel (no time recorded).
type Time struct {
	centis int
	real   bool
}

// Sentinel returns the "no time recorded" value.
func Sentinel() Time {
	return Time{}
}

// New builds a real Time from its components.
func New(minutes, seconds, hundredths int) (Time, error) {
	if minutes < 0 || minutes > maxMinutes {
		return Time{}, fmt.Errorf("%w: minutes %d out of range", ErrInvalidTime, minutes)
	}
	if seconds < 0 || seconds > maxSeconds {
		return Time{}, fmt.Errorf("%w: seconds %d out of range", ErrInvalidTime, seconds)
	}
	if hundredths < 0 || hundredths > maxHundredths {
		return Time{}, fmt.Errorf("%w: hundredths %d out of range", ErrInvalidTime, hundredths)
	}
	return Time{centis: minutes*centisPerMin + seconds*centisPerSec + hundredths, real: true}, nil
}

// Parse converts caller-supplied text into a Time. It accepts the
// sentinel literal and real times written as M:SS, MM:SS, M:SS.C or
// MM:SS.CC. Anything else yields ErrInvalidTime.
func Parse(raw string) (Time, error) {
	s := strings.TrimSpace(raw)
	if s == SentinelLiteral {
		return Sentinel(), nil
	}
	minPart, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Time{}, fmt.Errorf("%w: %q is not of the form MM:SS.CC", ErrInvalidTime, raw)
	}
	secPart, centiPart, hasFraction := strings.Cut(rest, ".")

	minutes, err := parseField(minPart, 1, 2, maxMinutes)
	if err != nil {
		return Time{}, fmt.Errorf("%w: bad minutes in %q", ErrInvalidTime, raw)
	}
	seconds, err := parseField(secPart, 1, 2, maxSeconds)
	if err != nil {
		return Time{}, fmt.Errorf("%w: bad seconds in %q", ErrInvalidTime, raw)
	}
	hundredths := 0
	if hasFraction {
		hundredths, err = parseField(centiPart, 1, 2, maxHundredths)
		if err != nil {
			return Time{}, fmt.Errorf("%w: bad hundredths in %q", ErrInvalidTime, raw)
		}
		// A single fraction digit means tenths: "1:30.5" is 01:30.50.
		if len(centiPart) == 1 {
			hundredths *= decimalBase
		}
	}
	return New(minutes, seconds, hundredths)
}

// parseField parses an all-digit field of bounded width and value.
func parseField(s string, minWidth, maxWidth, maxValue int) (int, error) {
	if len(s) < minWidth || len(s) > maxWidth {
		return 0, ErrInvalidTime
	}
	v := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTime
		}
		v = v*decimalBase + int(r-'0')
	}
	if v > maxValue {
		return 0, ErrInvalidTime
	}
	return v, nil
}

// IsSentinel reports whether no time has been recorded.
func (t Time) IsSentinel() bool {
	return !t.real
}

// Compare orders two times: -1 when t is better (smaller) than o,
// 0 when equal, +1 when t is worse. The sentinel is worse than every
// real time and equal to itself.
func (t Time) Compare(o Time) int {
	switch {
	case t.real && !o.real:
		return -1
	case !t.real && o.real:
		return 1
	case !t.real && !o.real:
		return 0
	case t.centis < o.centis:
		return -1
	case t.centis > o.centis:
		return 1
	default:
		return 0
	}
}

// Better reports whether t is strictly better (faster) than o.
func (t Time) Better(o Time) bool {
	return t.Compare(o) < 0
}

// String renders the canonical MM:SS.CC form.
func (t Time) String() string {
	if !t.real {
		return SentinelLiteral
	}
	minutes := t.centis / centisPerMin
	seconds := (t.centis % centisPerMin) / centisPerSec
	hundredths := t.centis % centisPerSec
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, hundredths)
}

// MarshalText implements encoding.TextMarshaler for the TOML codec.
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML codec.
func (t *Time) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
