// Package repository defines the persistence layer.  Sentinel errors let
// handlers distinguish failure classes: a missing or malformed identifier
// resolves to ErrNotFound (callers must not be able to tell the two
// apart), an overlapping time window to ErrConflict, and a mutation of a
// finished reservation to ErrTerminalState.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist or the supplied
// identifier is not in the store's id format.  Handlers translate this
// into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a create or reschedule would overlap an
// active reservation on the same resource and date.  Handlers translate
// this into an HTTP 409 response so clients can offer another time.
var ErrConflict = errors.New("time slot is not available")

// ErrTerminalState is returned when a cancelled, completed or no_show
// reservation is asked to change.  Handlers translate this into 400.
var ErrTerminalState = errors.New("reservation is in a terminal state")

// ErrEmailExists and ErrUsernameExists signal registration uniqueness
// violations.
var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
)
