package archive

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrNotFound = errors.New("no archive recorded for period")
)
