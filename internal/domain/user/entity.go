package user

import (
	"time"

	"github.com/google/uuid"

	"gin-auth-core/internal/pkg/errs"
)

// User aggregate root. Instances are immutable; lifecycle methods return a
// new instance and callers persist the returned value.
type User struct {
	id        uuid.UUID
	email     Email
	password  Password
	createdAt time.Time
	updatedAt time.Time
	lastLogin *time.Time
}

func NewUser(email Email, password Password, now time.Time) *User {
	return &User{
		id:        uuid.New(),
		email:     email,
		password:  password,
		createdAt: now,
		updatedAt: now,
	}
}

// Snapshot is the full persisted state, hash included. For repositories only.
type Snapshot struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// Details is the API-safe projection of a user. No hash.
type Details struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// Reconstruct rebuilds a User from a stored row. The email is re-validated
// and the hash trusted, so a corrupted row surfaces as an error naming the
// bad field instead of a silently broken aggregate.
func Reconstruct(s Snapshot) (*User, error) {
	email, err := NewEmail(s.Email)
	if err != nil {
		return nil, errs.Wrap(err, "stored email is invalid")
	}

	password, err := PasswordFromHash(s.PasswordHash)
	if err != nil {
		return nil, errs.Wrap(err, "stored password hash is invalid")
	}

	return &User{
		id:        s.ID,
		email:     email,
		password:  password,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		lastLogin: s.LastLogin,
	}, nil
}

func (u *User) ID() uuid.UUID         { return u.id }
func (u *User) Email() Email          { return u.email }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) LastLogin() *time.Time { return u.lastLogin }

// Authenticate checks plaintext against the stored hash.
func (u *User) Authenticate(plaintext string) bool {
	return u.password.Verify(plaintext)
}

// UpdateLastLogin returns a copy with lastLogin set and updatedAt bumped.
func (u *User) UpdateLastLogin(now time.Time) *User {
	copied := *u
	copied.lastLogin = &now
	copied.updatedAt = now
	return &copied
}

func (u *User) Details() Details {
	return Details{
		ID:        u.id,
		Email:     u.email.Value(),
		CreatedAt: u.createdAt,
		UpdatedAt: u.updatedAt,
		LastLogin: u.lastLogin,
	}
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:           u.id,
		Email:        u.email.Value(),
		PasswordHash: u.password.Hash(),
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
		LastLogin:    u.lastLogin,
	}
}
