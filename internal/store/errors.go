package store

import "errors"

var (
	// ErrAuthentication covers credential and session failures from the
	// authentication gateway.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound means the remote record is absent.
	ErrNotFound = errors.New("record not found")
	// ErrNetwork is a transient I/O failure. It triggers the cache fallback
	// on read paths only.
	ErrNetwork = errors.New("network failure")
)
