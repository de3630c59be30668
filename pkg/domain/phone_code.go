package domain

import "time"

// PhoneCode is a pending phone verification challenge. The code itself is
// never stored; it is derived from Secret and IssuedAt.
type PhoneCode struct {
	PhoneNumber string    `json:"phone_number"`
	Secret      string    `json:"secret"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
}

// IsExpired returns true once the code lifetime has passed.
func (c *PhoneCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
