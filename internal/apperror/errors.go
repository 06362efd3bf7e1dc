// Package apperror defines the error kinds surfaced by the session core.
// Callers branch on Kind via errors.As or the Is* helpers; the message is
// safe to show to a user.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindValidation is raised before any provider call is made.
	KindValidation Kind = "validation"
	// KindProvider wraps any failure returned by the external provider.
	KindProvider Kind = "provider"
	// KindAuthentication is a provider failure caused by rejected credentials.
	KindAuthentication Kind = "authentication"
	// KindPrecondition means the operation needs a signed-in identity.
	KindPrecondition Kind = "precondition"
	KindNotFound     Kind = "not_found"
)

type AppError struct {
	Kind    Kind   `json:"type"`
	Message string `json:"message"`
	// Status is the provider's HTTP status when the error came from it.
	Status   int   `json:"-"`
	Internal error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

func NewValidation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewPrecondition(message string) *AppError {
	return &AppError{Kind: KindPrecondition, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewProvider wraps a provider failure, keeping the provider's message.
func NewProvider(status int, message string, cause error) *AppError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &AppError{Kind: KindProvider, Message: message, Status: status, Internal: cause}
}

func NewAuthentication(status int, message string) *AppError {
	if message == "" {
		message = "invalid login credentials"
	}
	return &AppError{Kind: KindAuthentication, Message: message, Status: status}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsPrecondition(err error) bool { return KindOf(err) == KindPrecondition }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }

// IsAuthentication reports rejected credentials.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsProvider reports any provider-originated failure, including rejected
// credentials.
func IsProvider(err error) bool {
	k := KindOf(err)
	return k == KindProvider || k == KindAuthentication
}

// SafeMessage returns the user-safe message of an AppError, or a generic one.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}
