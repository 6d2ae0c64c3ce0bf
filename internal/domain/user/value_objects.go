package user

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/pkg/password"
)

const (
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 100
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a normalized (trimmed, lower-cased) address.
type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || utf8.RuneCountInString(s) > maxEmailLength || !emailRegex.MatchString(s) {
		return Email{}, errs.ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// Password holds only a bcrypt hash. Plaintext never survives construction.
type Password struct {
	hash string
}

// NewPassword validates the plaintext policy and computes the hash off the
// calling goroutine; a canceled ctx abandons the hash instead of blocking.
func NewPassword(ctx context.Context, plaintext string) (Password, error) {
	length := utf8.RuneCountInString(plaintext)
	if length < minPasswordLength || length > maxPasswordLength {
		return Password{}, errs.ErrInvalidPassword
	}

	type result struct {
		hash string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		hash, err := password.HashPassword(plaintext)
		ch <- result{hash: hash, err: err}
	}()

	select {
	case <-ctx.Done():
		return Password{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return Password{}, errs.Wrap(r.err, "failed to hash password")
		}
		return Password{hash: r.hash}, nil
	}
}

// PasswordFromHash reconstructs a Password from storage. The hash is
// trusted beyond a non-empty check; strength validation happened at creation.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, errs.ErrInvalidPassword
	}
	return Password{hash: hash}, nil
}

// Verify returns false on any mismatch or malformed stored hash, never an error.
func (p Password) Verify(plaintext string) bool {
	return password.ComparePassword(p.hash, plaintext)
}

// Hash exposes the stored hash for persistence only.
func (p Password) Hash() string {
	return p.hash
}
