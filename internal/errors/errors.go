package errors

import (
	"errors"
)

var (
	ErrInvalidEmail           = errors.New("please provide a valid email address")
	ErrWeakPassword           = errors.New("password must be at least 6 characters")
	ErrInvalidRole            = errors.New("role must be 'user' or 'admin'")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrSelfDemotion           = errors.New("you cannot revoke your own admin access")
	ErrTwoFactorRequired      = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode   = errors.New("invalid verification code")
	ErrNoPendingEnrollment    = errors.New("no two-factor enrollment in progress")
)
