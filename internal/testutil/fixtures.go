package testutil

import (
	"testing"
	"time"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TestJWTSecret = "test-jwt-secret-for-testing-only"

// SignedToken returns an HS256 access token shaped like the provider's.
func SignedToken(t *testing.T, secret string, userID uuid.UUID, email string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":        userID.String(),
		"email":      email,
		"role":       "authenticated",
		"session_id": uuid.New().String(),
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func NewIdentity(email string) models.Identity {
	return models.Identity{ID: uuid.New(), Email: email}
}

func NewSession(t *testing.T, identity models.Identity) *models.Session {
	t.Helper()
	expiresAt := time.Now().Add(time.Hour)
	return &models.Session{
		AccessToken:  SignedToken(t, TestJWTSecret, identity.ID, identity.Email, expiresAt),
		RefreshToken: "refresh-" + identity.ID.String(),
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
		User:         identity,
	}
}

func NewProfile(identity models.Identity, fullName string) *models.UserProfile {
	return &models.UserProfile{
		ID:        identity.ID,
		Email:     identity.Email,
		FullName:  fullName,
		Role:      models.RoleAuthor,
		UserScope: models.ScopeExternal,
		CreatedAt: time.Now().UTC(),
	}
}

func StringPtr(s string) *string {
	return &s
}
