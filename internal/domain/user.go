// Package domain contains core domain types for the Swasthya Bandhu application.
package domain

import (
	"time"
)

// User represents an anonymous visitor and, once registered, their contact details.
type User struct {
	VisitorID   string    `json:"visitor_id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Language    Language  `json:"language"`
	Registered  bool      `json:"registered"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsRegistered reports whether the visitor completed registration.
func (u *User) IsRegistered() bool {
	return u.Registered && u.PhoneNumber != ""
}
