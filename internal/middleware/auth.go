package middleware

import (
	"github.com/dimitrije/unimag/internal/session"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// SnapshotReader is the part of the session store the middleware reads.
type SnapshotReader interface {
	Snapshot() session.State
}

// RequireIdentity rejects requests while nobody is signed in and exposes the
// signed-in identity to handlers.
func RequireIdentity(store SnapshotReader) drift.HandlerFunc {
	return func(c *drift.Context) {
		st := store.Snapshot()
		if st.Identity == nil {
			c.Unauthorized("not authenticated")
			return
		}

		c.Set(UserIDKey, st.Identity.ID)
		c.Set(UserEmailKey, st.Identity.Email)

		c.Next()
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
