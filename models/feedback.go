package models

import (
	"fmt"
	"strings"
	"time"
)

type Feedback struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id,omitempty"`
	Type    string    `json:"type"`
	Rating  int       `json:"rating"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Email   string    `json:"email,omitempty"`
	Name    string    `json:"name,omitempty"`
	Status  string    `json:"status"` // new, reviewed, resolved
	Created time.Time `json:"created"`
}

type FeedbackRequest struct {
	Type    string `json:"type"`
	Rating  int    `json:"rating"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Validate checks a feedback submission. Anonymous submissions must carry
// a contact email so follow-ups remain possible.
func (r *FeedbackRequest) Validate(authenticated bool) error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if !authenticated {
		if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
			return fmt.Errorf("a valid email is required for anonymous feedback")
		}
	}
	return nil
}

type ContactMessage struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Status  string    `json:"status"` // new, read, replied
	Created time.Time `json:"created"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (r *ContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
