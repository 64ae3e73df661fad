package repository

import "errors"

// Sentinel kinds for store errors. Callers match with errors.Is.
var (
	ErrNotAnImprovement = errors.New("submitted time does not improve on the stored time")
	ErrNoUsers          = errors.New("no users given to register")
)
