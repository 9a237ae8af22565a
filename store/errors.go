package store

import "errors"

var (
	ErrNotAuthenticated = errors.New("sign in required")
	ErrForbidden        = errors.New("you do not have permission")
	ErrNotFound         = errors.New("record not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoBooking        = errors.New("table has no booking for the selected date")
)
