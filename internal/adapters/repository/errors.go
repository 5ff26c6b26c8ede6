package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrScoreNotFound = errors.New("score not found")
)
