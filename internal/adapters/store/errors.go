package store

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrClientNotFound = errors.New("client not found")
)
