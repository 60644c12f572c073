package models

import "time"

type Booking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"` // confirmed, cancelled
	CheckedIn   bool      `json:"checked_in"`
	Created     time.Time `json:"created"`
}

// BookingReceipt is returned once on a successful booking. The check-in
// code is never stored in clear and cannot be retrieved later.
type BookingReceipt struct {
	BookingID   string `json:"booking_id"`
	EventID     string `json:"event_id"`
	EventTitle  string `json:"event_title"`
	CheckInCode string `json:"check_in_code"`
	SpotsLeft   int    `json:"spots_left"`
}

type BookingRequest struct {
	EventID string `json:"event_id"`
}

type CheckInRequest struct {
	Code string `json:"code"`
}
