package dto

import (
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// RegistrationResponse is a registration as returned over HTTP.
type RegistrationResponse struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	College        string            `json:"college"`
	Department     string            `json:"department,omitempty"`
	Year           string            `json:"year,omitempty"`
	PhotoURL       string            `json:"photo_url"`
	ReferralSource string            `json:"referral_source,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FromRegistration converts a registration.
func FromRegistration(r domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		College:        r.College,
		Department:     r.Department,
		Year:           r.Year,
		PhotoURL:       r.PhotoURL,
		ReferralSource: r.ReferralSource,
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
	}
}
