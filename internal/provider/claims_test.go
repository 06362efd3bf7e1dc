package provider

import (
	"testing"
	"time"

	"github.com/dimitrije/unimag/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenParser_Verified(t *testing.T) {
	parser := NewTokenParser(testutil.TestJWTSecret)
	userID := uuid.New()
	token := testutil.SignedToken(t, testutil.TestJWTSecret, userID, "a@b.com", time.Now().Add(time.Hour))

	claims, err := parser.Parse(token)

	require.NoError(t, err)
	assert.True(t, parser.Verifies())
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "authenticated", claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestTokenParser_WrongSecret(t *testing.T) {
	parser := NewTokenParser(testutil.TestJWTSecret)
	token := testutil.SignedToken(t, "some-other-secret", uuid.New(), "a@b.com", time.Now().Add(time.Hour))

	_, err := parser.Parse(token)

	assert.Error(t, err)
}

func TestTokenParser_Expired(t *testing.T) {
	parser := NewTokenParser(testutil.TestJWTSecret)
	token := testutil.SignedToken(t, testutil.TestJWTSecret, uuid.New(), "a@b.com", time.Now().Add(-time.Hour))

	_, err := parser.Parse(token)

	assert.Error(t, err)
}

func TestTokenParser_Unverified(t *testing.T) {
	parser := NewTokenParser("")
	userID := uuid.New()
	token := testutil.SignedToken(t, "unknown-secret", userID, "a@b.com", time.Now().Add(time.Hour))

	claims, err := parser.Parse(token)

	require.NoError(t, err)
	assert.False(t, parser.Verifies())
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestTokenParser_Malformed(t *testing.T) {
	for _, secret := range []string{"", testutil.TestJWTSecret} {
		_, err := NewTokenParser(secret).Parse("not.a.token")
		assert.Error(t, err)
	}
}

func TestClaims_UserID_Invalid(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "anon"

	_, err := claims.UserID()

	assert.Error(t, err)
}
