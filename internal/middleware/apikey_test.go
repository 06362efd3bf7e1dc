package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
)

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		header   string
		value    string
		wantCode int
		wantBody string
	}{
		{"disabled", "", "", "", http.StatusOK, ""},
		{"missing", "local-key", "", "", http.StatusUnauthorized, "missing api key"},
		{"header", "local-key", APIKeyHeader, "local-key", http.StatusOK, ""},
		{"bearer", "local-key", "Authorization", "Bearer local-key", http.StatusOK, ""},
		{"bearer lowercase", "local-key", "Authorization", "bearer local-key", http.StatusOK, ""},
		{"bad scheme", "local-key", "Authorization", "Basic local-key", http.StatusUnauthorized, "invalid authorization header format"},
		{"wrong key", "local-key", APIKeyHeader, "other-key", http.StatusUnauthorized, "invalid api key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := drift.New()
			app.Use(APIKey(tt.key))
			app.Get("/protected", func(c *drift.Context) {
				_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
