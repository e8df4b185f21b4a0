package users

import "errors"

var (
	// ErrValidation is returned when registration input is blank or too long.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateNickname is returned when the normalized nickname is already taken.
	ErrDuplicateNickname = errors.New("nickname already exists")

	// ErrUserNotFound is returned when no user matches the nickname.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned when the password does not match the stored verifier.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrAccessDenied is returned when a non-admin actor calls an admin-only operation.
	ErrAccessDenied = errors.New("access denied")
)
