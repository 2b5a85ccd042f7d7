package model

import "errors"

var (
	// ErrNotFound reports an unknown document or session id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRate reports a non-positive words-per-minute value.
	ErrInvalidRate = errors.New("invalid words-per-minute rate")
)
