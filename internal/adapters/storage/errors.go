package storage

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrCorrupted = errors.New("database document is corrupted")
)
