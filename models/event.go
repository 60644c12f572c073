package models

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Time             string    `json:"time"`
	Location         string    `json:"location"`
	Price            float64   `json:"price"`
	MaxAttendees     int       `json:"max_attendees"`
	CurrentAttendees int       `json:"current_attendees"`
	ImageURL         string    `json:"image_url,omitempty"`
	Category         string    `json:"category,omitempty"`
	Status           string    `json:"status"` // active, cancelled, completed
	SpotsLeft        int       `json:"spots_left"`
	SoldOut          bool      `json:"sold_out"`
	Created          time.Time `json:"created"`
}

type EventRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Location     string  `json:"location"`
	Price        float64 `json:"price"`
	MaxAttendees int     `json:"max_attendees"`
	ImageURL     string  `json:"image_url"`
	Category     string  `json:"category"`
}

func (r *EventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Date == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if r.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if r.MaxAttendees <= 0 {
		return fmt.Errorf("max_attendees must be a positive integer")
	}
	return nil
}
