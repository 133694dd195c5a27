// Package repository defines the seat store and the error values shared by
// its MySQL and in-memory implementations.  These sentinel values allow
// higher layers such as handlers to distinguish between different failure
// scenarios.  For example, ErrForbidden indicates that the current user is
// not allowed to act on an event organised by someone else, while
// ErrConflict signals that a conditional update lost against the current
// seat state.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a conditional write does not match the
// current state: the seat is not available, the lock is gone or a
// reservation already exists for the seat.  Handlers translate this into
// HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrEventNotFound is returned when an event lookup yields no rows.
var ErrEventNotFound = errors.New("event not found")

// ErrSeatNotHeld is returned by release when the seat exists but is not
// locked by the caller.
var ErrSeatNotHeld = errors.New("seat not locked by caller")

// ErrLockExpired is returned by confirm when the caller's lock lapsed
// before the confirmation arrived.  It wraps ErrConflict.
var ErrLockExpired = errConflict("seat lock expired")

// ErrDuplicateReservation is returned when the ledger already holds a
// reservation for the seat.  It wraps ErrConflict.
var ErrDuplicateReservation = errConflict("seat already reserved")

// ErrInvalidInput marks malformed identifiers or request values.
var ErrInvalidInput = errors.New("invalid input")

type conflictError struct{ msg string }

func errConflict(msg string) error { return &conflictError{msg: msg} }

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Unwrap() error { return ErrConflict }
