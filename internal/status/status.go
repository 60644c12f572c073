package status

import "errors"

var (
	ErrEventNotFound    = errors.New("event: event not found")
	ErrEventNotActive   = errors.New("event: event is not open for booking")
	ErrEventFull        = errors.New("event: no spots left")
	ErrDuplicateBooking = errors.New("booking: active booking already exists for this event")
	ErrBookingInFlight  = errors.New("booking: a booking attempt for this event is already in progress")
	ErrBookingNotFound  = errors.New("booking: booking not found")
	ErrBookingCancelled = errors.New("booking: booking is already cancelled")
	ErrInvalidCheckIn   = errors.New("booking: check-in code does not match")
	ErrAlreadyCheckedIn = errors.New("booking: booking is already checked in")
	ErrProfileNotFound  = errors.New("profile: profile not found")
)
