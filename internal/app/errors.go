package app

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrClientListFetch means the client list itself could not be fetched,
	// leaving nothing to score. It aborts the whole pass.
	ErrClientListFetch = errors.New("client list fetch failed")
)
