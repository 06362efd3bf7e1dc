package handlers

import (
	"context"
	"errors"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/m1z23r/drift/pkg/drift"
)

func respondError(c *drift.Context, err error) {
	msg := apperror.SafeMessage(err)

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		c.BadRequest(msg)
	case apperror.KindAuthentication, apperror.KindPrecondition:
		c.Unauthorized(msg)
	case apperror.KindNotFound:
		c.NotFound(msg)
	case apperror.KindProvider:
		if errors.Is(err, context.DeadlineExceeded) {
			c.GatewayTimeout("auth provider timed out")
			return
		}
		c.BadGateway(msg)
	default:
		c.InternalServerError("internal server error")
	}
}
