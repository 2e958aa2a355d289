package service

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden        = errors.New("access denied")
	ErrAlreadyPaid      = errors.New("booking is already paid")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrBookingCompleted = errors.New("booking is already completed")
	ErrRateLimited      = errors.New("too many requests")
	ErrEventPassed      = errors.New("event date has passed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrUserDisabled     = errors.New("account is deactivated")
	ErrEmailTaken       = errors.New("user already exists")
	ErrSelfDelete       = errors.New("cannot delete your own account")
	ErrTokenExpired     = errors.New("invalid or expired token")
)

// NotEnoughSpotsError carries the remaining capacity so the response can tell
// the customer exactly how many seats are left.
type NotEnoughSpotsError struct {
	Available int64
}

func (e *NotEnoughSpotsError) Error() string {
	return fmt.Sprintf("Only %d spots available", e.Available)
}
