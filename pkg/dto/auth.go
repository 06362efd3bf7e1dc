package dto

import "github.com/google/uuid"

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	UserScope string `json:"user_scope,omitempty"`
}

// SignUpResponse never carries tokens. ConfirmationRequired is true while the
// provider waits for the email link to be followed.
type SignUpResponse struct {
	UserID               uuid.UUID `json:"user_id"`
	Email                string    `json:"email"`
	ConfirmationRequired bool      `json:"confirmation_required"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type RecoveryRequest struct {
	TokenHash string `json:"token_hash"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
