package domain

import "time"

// Registration is an attendee's sign-up record, keyed by identity.
type Registration struct {
	ID             string
	UserID         string
	FullName       string
	Email          string
	Phone          string
	College        string
	Department     string
	Year           string
	PhotoURL       string
	ReferralSource string
	Metadata       map[string]string
	CreatedAt      time.Time
}
