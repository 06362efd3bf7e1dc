package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/dimitrije/unimag/internal/logger"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/internal/session"
	"github.com/dimitrije/unimag/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const signInWait = 5 * time.Second

type AuthHandler struct {
	store     SessionStore
	passwords PasswordService
	log       *logger.Logger
}

func NewAuthHandler(store SessionStore, passwords PasswordService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		store:     store,
		passwords: passwords,
		log:       log,
	}
}

func (h *AuthHandler) SignUp(c *drift.Context) {
	var req dto.SignUpRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	result, err := h.store.SignUp(c.Request.Context(), models.SignUpInput{
		Email:     email,
		Password:  req.Password,
		FullName:  req.FullName,
		UserScope: req.UserScope,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	_ = c.JSON(201, dto.SignUpResponse{
		UserID:               result.User.ID,
		Email:                result.User.Email,
		ConfirmationRequired: result.Session == nil,
	})
}

func (h *AuthHandler) SignIn(c *drift.Context) {
	var req dto.SignInRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := c.Request.Context()
	if err := h.store.SignIn(ctx, email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	// The identity lands through the provider's notification, so wait for it.
	st := awaitState(ctx, h.store, signInWait, func(st session.State) bool {
		return st.Identity != nil && !st.Loading
	})
	_ = c.JSON(200, toSessionResponse(st))
}

// awaitState returns the first watched state satisfying done, or the latest
// snapshot once ctx ends or the timeout passes.
func awaitState(ctx context.Context, store SessionStore, timeout time.Duration, done func(session.State) bool) session.State {
	updates, cancel := store.Watch()
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return store.Snapshot()
			}
			if done(st) {
				return st
			}
		case <-timer.C:
			return store.Snapshot()
		case <-ctx.Done():
			return store.Snapshot()
		}
	}
}

func (h *AuthHandler) SignOut(c *drift.Context) {
	if err := h.store.SignOut(c.Request.Context()); err != nil {
		h.log.Warn("sign out failed", "error", err)
		respondError(c, err)
		return
	}

	_ = c.JSON(200, toSessionResponse(h.store.Snapshot()))
}

// ResetPassword always answers with the same message so the response does
// not reveal whether the address has an account.
func (h *AuthHandler) ResetPassword(c *drift.Context) {
	var req dto.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		c.BadRequest("email is required")
		return
	}

	if err := h.passwords.ResetPassword(c.Request.Context(), email); err != nil {
		respondError(c, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "if the address is registered, a reset link has been sent"})
}

func (h *AuthHandler) VerifyRecovery(c *drift.Context) {
	var req dto.RecoveryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.TokenHash == "" {
		c.BadRequest("token_hash is required")
		return
	}

	if _, err := h.passwords.VerifyRecovery(c.Request.Context(), req.TokenHash); err != nil {
		respondError(c, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "recovery verified, choose a new password"})
}

func (h *AuthHandler) UpdatePassword(c *drift.Context) {
	var req dto.UpdatePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Password == "" {
		c.BadRequest("password is required")
		return
	}

	if err := h.passwords.UpdatePassword(c.Request.Context(), req.Password); err != nil {
		respondError(c, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "password updated"})
}
