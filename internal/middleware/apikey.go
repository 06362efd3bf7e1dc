package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
)

const APIKeyHeader = "X-API-Key"

// APIKey guards routes with the locally configured key, sent either in
// X-API-Key or as a bearer token. An empty key disables the check.
func APIKey(key string) drift.HandlerFunc {
	return func(c *drift.Context) {
		if key == "" {
			c.Next()
			return
		}

		token := c.GetHeader(APIKeyHeader)
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.Unauthorized("missing api key")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				c.Unauthorized("invalid authorization header format")
				return
			}
			token = parts[1]
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			c.Unauthorized("invalid api key")
			return
		}

		c.Next()
	}
}
