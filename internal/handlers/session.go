package handlers

import (
	"github.com/dimitrije/unimag/internal/logger"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/internal/session"
	"github.com/dimitrije/unimag/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type SessionHandler struct {
	store SessionStore
	log   *logger.Logger
}

func NewSessionHandler(store SessionStore, log *logger.Logger) *SessionHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionHandler{store: store, log: log}
}

func (h *SessionHandler) Get(c *drift.Context) {
	_ = c.JSON(200, toSessionResponse(h.store.Snapshot()))
}

// Events streams a snapshot event for the current state and for every change
// after it, until the client goes away or the store is disposed.
func (h *SessionHandler) Events(c *drift.Context) {
	updates, cancel := h.store.Watch()
	defer cancel()

	sseCtx := c.SSE()
	done := c.Request.Context().Done()

	h.log.Debug("session stream opened")
	defer h.log.Debug("session stream closed")

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := sseCtx.SendJSON(toSessionResponse(st), "snapshot", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func toSessionResponse(st session.State) dto.SessionResponse {
	resp := dto.SessionResponse{
		Status:      string(st.Status),
		Loading:     st.Loading,
		DisplayName: st.DisplayName(),
	}
	if st.Identity != nil {
		resp.Identity = &dto.IdentityResponse{
			ID:               st.Identity.ID,
			Email:            st.Identity.Email,
			EmailConfirmedAt: st.Identity.EmailConfirmedAt,
			LastSignInAt:     st.Identity.LastSignInAt,
		}
	}
	if st.Profile != nil {
		resp.Profile = toProfileResponse(st.Profile)
	}
	if st.ProfileErr != nil {
		resp.ProfileError = "profile could not be loaded"
	}
	return resp
}

func toProfileResponse(p *models.UserProfile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		UserScope:    p.UserScope,
		UserType:     p.UserType,
		Bio:          p.Bio,
		ProfileImage: p.ProfileImage,
		Department:   p.Department,
		Company:      p.Company,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
