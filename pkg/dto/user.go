package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	UserScope    string     `json:"user_scope"`
	UserType     *string    `json:"user_type,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	ProfileImage *string    `json:"profile_image,omitempty"`
	Department   *string    `json:"department,omitempty"`
	Company      *string    `json:"company,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// UpdateProfileRequest omits role and user_scope; neither is client-updatable.
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	UserType     *string `json:"user_type,omitempty"`
	Department   *string `json:"department,omitempty"`
	Company      *string `json:"company,omitempty"`
}
