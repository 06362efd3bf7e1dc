package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles. The provider's default for new rows is RoleAuthor.
const (
	RoleAuthor = "author"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

const (
	ScopeInternal = "internal"
	ScopeExternal = "external"
)

const (
	UserTypeStudent      = "student"
	UserTypeFaculty      = "faculty"
	UserTypeAlumni       = "alumni"
	UserTypeProfessional = "professional"
	UserTypeGuest        = "guest"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAuthor, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

func IsValidScope(scope string) bool {
	return scope == ScopeInternal || scope == ScopeExternal
}

func IsValidUserType(t string) bool {
	switch t {
	case UserTypeStudent, UserTypeFaculty, UserTypeAlumni, UserTypeProfessional, UserTypeGuest:
		return true
	}
	return false
}

// UserProfile is the application's record about a user, keyed by the
// provider identity id.
type UserProfile struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	UserScope    string     `json:"user_scope"`
	UserType     *string    `json:"user_type,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	ProfileImage *string    `json:"profile_image,omitempty"`
	Department   *string    `json:"department,omitempty"`
	Company      *string    `json:"company,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ProfileUpdate is a partial profile update. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName     *string `json:"full_name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	UserType     *string `json:"user_type,omitempty"`
	Department   *string `json:"department,omitempty"`
	Company      *string `json:"company,omitempty"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Bio == nil && u.ProfileImage == nil &&
		u.UserType == nil && u.Department == nil && u.Company == nil
}
