package handlers

import (
	"context"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/internal/session"
)

// SessionStore defines the methods used by handlers from session.Store
type SessionStore interface {
	Snapshot() session.State
	Watch() (<-chan session.State, func())
	SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, updates models.ProfileUpdate) error
}

// PasswordService defines the password operations used by handlers from the
// auth gateway
type PasswordService interface {
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	VerifyRecovery(ctx context.Context, tokenHash string) (*models.Session, error)
}
