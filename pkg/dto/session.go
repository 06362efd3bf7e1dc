package dto

import (
	"time"

	"github.com/google/uuid"
)

type IdentityResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
}

type SessionResponse struct {
	Status       string            `json:"status"`
	Loading      bool              `json:"loading"`
	DisplayName  string            `json:"display_name,omitempty"`
	Identity     *IdentityResponse `json:"identity"`
	Profile      *ProfileResponse  `json:"profile"`
	ProfileError string            `json:"profile_error,omitempty"`
}
