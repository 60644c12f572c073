package models

import "time"

const (
	NotificationTypeEvent   = "event"
	NotificationTypeSystem  = "system"
	NotificationTypeBooking = "booking"
)

type Notification struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Type    string    `json:"type"` // event, system, booking
	Read    bool      `json:"read"`
	Created time.Time `json:"created"`
}

type BroadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
