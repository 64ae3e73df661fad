package model

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidCourse = errors.New("course id outside the fixed course set")
)
