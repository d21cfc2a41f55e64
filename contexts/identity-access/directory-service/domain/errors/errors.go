package errors

import "errors"

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrForbidden     = errors.New("caller lacks the required role")
	ErrInvalidInput  = errors.New("invalid directory input")
	ErrMemberExists  = errors.New("user is already a member of the workgroup")
	ErrNotFoundGroup = errors.New("workgroup not found")
)
