package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid booking state for operation")
	ErrAlreadyCheckedIn  = errors.New("booking is already checked in")
	ErrAlreadyCheckedOut = errors.New("booking is already checked out")
)
