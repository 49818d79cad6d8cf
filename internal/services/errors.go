package services

import "errors"

// Service-level failure taxonomy. Handlers map these to HTTP statuses;
// anything not listed here is an internal error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrRoleNotAllowed     = errors.New("only admins can assign roles")
	ErrSelfDemotion       = errors.New("cannot change your own admin role")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// ValidationError carries a user-facing message for a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
