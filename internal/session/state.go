package session

import "github.com/dimitrije/unimag/internal/models"

type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is a point-in-time view of the store. Profile is never set without
// Identity. ProfileErr is set when an identity is established but its
// profile could not be loaded; consumers fall back to identity-only display.
type State struct {
	Identity   *models.Identity
	Profile    *models.UserProfile
	Loading    bool
	ProfileErr error
	Status     Status
}

// DisplayName prefers the profile's full name and falls back to the email.
func (st State) DisplayName() string {
	if st.Profile != nil && st.Profile.FullName != "" {
		return st.Profile.FullName
	}
	if st.Identity != nil {
		return st.Identity.Email
	}
	return ""
}
