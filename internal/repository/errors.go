package repository

import "errors"

var (
	// ErrConditionFailed means a guarded UPDATE matched no row: the tank level,
	// capacity or credit limit would have been violated.
	ErrConditionFailed = errors.New("guarded update matched no row")
	// ErrAlreadyApplied means a one-way state transition already happened.
	ErrAlreadyApplied = errors.New("transition already applied")
)
