package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token errors
	// ErrTokenInvalid covers bad signature, bad structure and decode-time expiry
	ErrNoToken              = errors.New("authorization token not provided")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrTokenMalformed       = errors.New("token missing required fields")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrTokenExpired         = errors.New("token is expired")
	ErrAccessTokenRequired  = errors.New("access token required, not refresh token")
	ErrRefreshTokenRequired = errors.New("refresh token required, not access token")

	ErrRoleNotAllowed = errors.New("role is not allowed to perform this action")

	ErrBookNotFound = errors.New("book not found")
)
