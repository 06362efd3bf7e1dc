package logger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RedactsCredentialKeys(t *testing.T) {
	log, logs := NewObserved()

	log.Info("sign in", "email", "a@b.com", "password", "secret", "event", "SIGNED_IN")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["email"])
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.Equal(t, "SIGNED_IN", fields["event"])
}

func TestLogger_HashesUserID(t *testing.T) {
	log, logs := NewObserved()
	id := uuid.New()

	log.Warn("profile load failed", "user_id", id)

	fields := logs.All()[0].ContextMap()
	hashed, ok := fields["user_id"].(string)
	require.True(t, ok)
	assert.Contains(t, hashed, "hash:")
	assert.NotContains(t, hashed, id.String())
}

func TestLogger_RedactsJWTLookingValues(t *testing.T) {
	log, logs := NewObserved()
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"

	log.Debug("header", "value", jwt)

	assert.Equal(t, "[REDACTED]", logs.All()[0].ContextMap()["value"])
}

func TestLogger_With(t *testing.T) {
	log, logs := NewObserved()

	log.With("component", "session").Info("ready")

	assert.Equal(t, "session", logs.All()[0].ContextMap()["component"])
}
