package auth

import "errors"

var (
	// ErrInvalidUsername is returned when the username fails validation.
	ErrInvalidUsername = errors.New("username must be between 1 and 50 characters")
	// ErrDuplicateUsername is returned when the username is already registered.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrInvalidCredentials covers both unknown-username and wrong-password,
	// deliberately indistinguishable to prevent enumeration.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrNotAuthenticated is returned for a missing or malformed bearer header.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidToken covers every token decode failure: malformed, mis-signed,
	// wrong algorithm or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned when a valid token references a user that no
	// longer exists.
	ErrUserNotFound = errors.New("user not found")
)
