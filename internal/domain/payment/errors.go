package payment

import "errors"

var (
	ErrDuplicateHolding = errors.New("pending payment already exists for booking")
	ErrAlreadyReleased  = errors.New("pending payment already released")
	ErrNotHeld          = errors.New("pending payment is not held")
	ErrNoHolding        = errors.New("no pending payment for booking")
	ErrInvalidAmount    = errors.New("amount must be positive")
)
