package service

import "errors"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnavailable means the user document could not be read after every retry
	ErrUnavailable = errors.New("results temporarily unavailable")
	// ErrPersistence wraps a failed synchronous document write
	ErrPersistence  = errors.New("persistence failure")
	ErrNoResults    = errors.New("no results for this user")
	ErrInvalidInput = errors.New("invalid input")
)
