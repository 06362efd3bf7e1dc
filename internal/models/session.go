package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Identity is the provider's authenticated principal. The application never
// stores credentials for it.
type Identity struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	Metadata         map[string]any `json:"user_metadata,omitempty"`
}

// Session is a provider-issued session as cached on this side.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// Token returns the session's credentials as an oauth2 token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}

// Expired reports whether the access token is expired or about to be,
// using the same early-expiry window as oauth2.
func (s *Session) Expired() bool {
	return !s.Token().Valid()
}

type SignUpInput struct {
	Email     string
	Password  string
	FullName  string
	UserScope string
}

// SignUpResult reports whether the provider created a session immediately.
// Session is nil while email confirmation is pending.
type SignUpResult struct {
	User    Identity
	Session *Session
}

// AuthEvent tags a provider-driven session change.
type AuthEvent string

const (
	EventSignedIn         AuthEvent = "SIGNED_IN"
	EventSignedOut        AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed   AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEvent = "USER_UPDATED"
	EventPasswordRecovery AuthEvent = "PASSWORD_RECOVERY"
)

// AuthChange is delivered to session-change subscribers. Session is nil
// when the change left no active session.
type AuthChange struct {
	Event   AuthEvent
	Session *Session
}
