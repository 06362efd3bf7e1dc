package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/middleware"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/internal/session"
	"github.com/dimitrije/unimag/internal/testutil"
	"github.com/dimitrije/unimag/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_Update(t *testing.T) {
	mockStore := new(testutil.MockSessionStore)
	handler := NewProfileHandler(mockStore, nil)
	before := authenticatedState(t, "Ann Author")
	after := before
	after.Profile = testutil.NewProfile(*before.Identity, "Ann Author")
	after.Profile.Bio = testutil.StringPtr("hi")

	bio := "hi"
	mockStore.On("Snapshot").Return(before).Once()
	mockStore.On("UpdateProfile", mock.Anything, models.ProfileUpdate{Bio: &bio}).Return(nil)
	mockStore.On("Snapshot").Return(after).Once()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.RequireIdentity(mockStore))
	app.Patch("/profile", handler.Update)

	req := jsonRequest(t, http.MethodPatch, "/profile", dto.UpdateProfileRequest{Bio: &bio})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Profile)
	require.NotNil(t, response.Profile.Bio)
	assert.Equal(t, "hi", *response.Profile.Bio)
	mockStore.AssertExpectations(t)
}

func TestProfileHandler_Update_NotSignedIn(t *testing.T) {
	mockStore := new(testutil.MockSessionStore)
	handler := NewProfileHandler(mockStore, nil)

	mockStore.On("Snapshot").Return(session.State{Status: session.StatusUnauthenticated})

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.RequireIdentity(mockStore))
	app.Patch("/profile", handler.Update)

	req := jsonRequest(t, http.MethodPatch, "/profile", dto.UpdateProfileRequest{Bio: testutil.StringPtr("hi")})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockStore.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestProfileHandler_Update_Empty(t *testing.T) {
	mockStore := new(testutil.MockSessionStore)
	handler := NewProfileHandler(mockStore, nil)

	mockStore.On("Snapshot").Return(authenticatedState(t, "Ann"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.RequireIdentity(mockStore))
	app.Patch("/profile", handler.Update)

	req := jsonRequest(t, http.MethodPatch, "/profile", map[string]string{"role": "admin"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no fields to update")
	mockStore.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestProfileHandler_Update_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", apperror.NewValidation("unknown user type"), http.StatusBadRequest},
		{"precondition", apperror.NewPrecondition("no user logged in"), http.StatusUnauthorized},
		{"not found", apperror.NewNotFound("profile not found"), http.StatusNotFound},
		{"provider", apperror.NewProvider(403, "permission denied", nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(testutil.MockSessionStore)
			handler := NewProfileHandler(mockStore, nil)

			mockStore.On("Snapshot").Return(authenticatedState(t, "Ann"))
			mockStore.On("UpdateProfile", mock.Anything, mock.Anything).Return(tt.err)

			app := drift.New()
			app.Use(driftmw.BodyParser())
			app.Use(middleware.RequireIdentity(mockStore))
			app.Patch("/profile", handler.Update)

			req := jsonRequest(t, http.MethodPatch, "/profile", dto.UpdateProfileRequest{UserType: testutil.StringPtr("robot")})
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), apperror.SafeMessage(tt.err))
		})
	}
}
