package provider

import (
	"time"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
)

// profileRow is the stored shape of a users row. toProfile is the only place
// rows become models.UserProfile.
type profileRow struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	UserScope    string     `json:"user_scope"`
	UserType     *string    `json:"user_type"`
	Bio          *string    `json:"bio"`
	ProfileImage *string    `json:"profile_image"`
	Department   *string    `json:"department"`
	Company      *string    `json:"company"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func (r *profileRow) toProfile() *models.UserProfile {
	return &models.UserProfile{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		Role:         r.Role,
		UserScope:    r.UserScope,
		UserType:     nonEmpty(r.UserType),
		Bio:          nonEmpty(r.Bio),
		ProfileImage: nonEmpty(r.ProfileImage),
		Department:   nonEmpty(r.Department),
		Company:      nonEmpty(r.Company),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// updateColumns returns the columns set by u, keyed by column name.
func updateColumns(u models.ProfileUpdate) map[string]any {
	cols := make(map[string]any)
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("full_name", u.FullName)
	set("bio", u.Bio)
	set("profile_image", u.ProfileImage)
	set("user_type", u.UserType)
	set("department", u.Department)
	set("company", u.Company)
	return cols
}
