package racetime

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidTime = errors.New("invalid race time")
)
