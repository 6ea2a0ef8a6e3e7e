package session

import (
	"errors"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/service"
)

// Error codes carried by AuthError.
const (
	CodeInvalidCredentials  = "invalid_credentials"
	CodeEmailTaken          = "email_taken"
	CodeInvalidInput        = "invalid_input"
	CodeInvalidToken        = "invalid_token"
	CodeProviderUnavailable = "provider_unavailable"
	CodeNotAuthenticated    = "not_authenticated"
	CodeProfile             = "profile_error"
	CodeUnavailable         = "unavailable"
)

// AuthError is the structured failure returned by every State operation.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func toAuthError(err error) error {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return &AuthError{Code: CodeInvalidCredentials, Message: "Invalid email or password.", Err: err}
	case errors.Is(err, service.ErrEmailTaken):
		return &AuthError{Code: CodeEmailTaken, Message: "This email is already registered.", Err: err}
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, gateway.ErrInvalidProfile):
		return &AuthError{Code: CodeInvalidInput, Message: err.Error(), Err: err}
	case errors.Is(err, service.ErrInvalidToken):
		return &AuthError{Code: CodeInvalidToken, Message: "Your session is invalid or has expired.", Err: err}
	case errors.Is(err, service.ErrUnsupportedProvider), errors.Is(err, service.ErrOAuthNotConfigured):
		return &AuthError{Code: CodeProviderUnavailable, Message: "This sign-in method is not available.", Err: err}
	default:
		return &AuthError{Code: CodeUnavailable, Message: "The service is unavailable, please try again.", Err: err}
	}
}
