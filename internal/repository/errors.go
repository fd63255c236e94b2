package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoSessionsRemaining is returned when redeeming an exhausted or inactive combo.
	ErrNoSessionsRemaining = errors.New("no combo sessions remaining")
	// ErrBookingExpired is returned when confirming a pending booking past its date.
	ErrBookingExpired = errors.New("pending booking expired")
	// ErrAlreadyHandled is returned when a pending booking was already confirmed or cancelled.
	ErrAlreadyHandled = errors.New("pending booking already handled")
	// ErrInvalidTransition is returned when a task status move is not permitted.
	ErrInvalidTransition = errors.New("invalid task transition")
	// ErrDuplicatePhone is returned when a customer phone number is already registered.
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrDuplicateEmail is returned when a staff email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
