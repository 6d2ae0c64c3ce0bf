package errs

import "errors"

// Sentinel errors shared by the usecase layers. Callers branch with
// errors.Is; infrastructure causes stay wrapped underneath via Mark.
var (
	// Value object errors
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("password must be between 8 and 100 characters")

	// ErrInvalidCredentials deliberately covers malformed input, unknown
	// email and wrong password so responses cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("email already registered")
)
