package cancellation

import "errors"

var (
	ErrNotFound         = errors.New("cancellation not found")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrAlreadyCancelled = errors.New("cancellation already exists for booking")
	ErrForbidden        = errors.New("forbidden")
)
