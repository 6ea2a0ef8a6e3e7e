package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrUnsupportedProvider = errors.New("unsupported auth provider")
	ErrOAuthNotConfigured  = errors.New("oauth provider not configured")
	ErrInvalidPeriod       = errors.New("period must be day, week or month")
	ErrInvalidAvatar       = errors.New("avatar must be a jpeg, png or webp image up to 5MB")
	ErrStorageUnavailable  = errors.New("avatar storage unavailable")
)
