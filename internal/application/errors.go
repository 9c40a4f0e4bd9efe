package application

import "errors"

// Error kinds surfaced by the services. Handlers map them onto HTTP
// statuses; none is fatal to the process.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidName        = errors.New("name produces an empty slug")
	ErrInvalidParent      = errors.New("invalid parent category")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrNotVerified        = errors.New("email is not verified")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code has expired")
	ErrResetNotVerified   = errors.New("reset code has not been verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrExternalAccount    = errors.New("account uses google sign-in")
	ErrDeliveryFailed     = errors.New("email delivery failed")
)
