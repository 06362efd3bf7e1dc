package handlers

import (
	"github.com/dimitrije/unimag/internal/logger"
	"github.com/dimitrije/unimag/internal/middleware"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ProfileHandler struct {
	store SessionStore
	log   *logger.Logger
}

func NewProfileHandler(store SessionStore, log *logger.Logger) *ProfileHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProfileHandler{store: store, log: log}
}

// Update applies a partial profile update for the signed-in user and responds
// with the resulting session snapshot.
func (h *ProfileHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updates := models.ProfileUpdate{
		FullName:     req.FullName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		UserType:     req.UserType,
		Department:   req.Department,
		Company:      req.Company,
	}
	if updates.IsEmpty() {
		c.BadRequest("no fields to update")
		return
	}

	if err := h.store.UpdateProfile(c.Request.Context(), updates); err != nil {
		h.log.Warn("profile update failed", "user_id", userID, "error", err)
		respondError(c, err)
		return
	}

	_ = c.JSON(200, toSessionResponse(h.store.Snapshot()))
}
