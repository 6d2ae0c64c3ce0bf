//go:build unit || e2e

package builder

import (
	"context"
	"time"

	"gin-auth-core/internal/domain/user"
	"gin-auth-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	Email        string
	PasswordHash string
	Now          time.Time
	LastLogin    *time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		Email: "test@example.com",
		// Structurally valid bcrypt hash; never verifies against a real password.
		PasswordHash: "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW",
		Now:          time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	password, err := user.PasswordFromHash(u.PasswordHash)
	if err != nil {
		return nil, err
	}

	built := user.NewUser(email, password, u.Now)
	if u.LastLogin != nil {
		built = built.UpdateLastLogin(*u.LastLogin)
	}
	return built, nil
}

// BuildDomainWithPassword hashes plaintext for real, for tests that must
// authenticate against the built user. Each call pays the full bcrypt cost.
func (u *UserBuilder) BuildDomainWithPassword(ctx context.Context, plaintext string) (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	password, err := user.NewPassword(ctx, plaintext)
	if err != nil {
		return nil, err
	}

	built := user.NewUser(email, password, u.Now)
	if u.LastLogin != nil {
		built = built.UpdateLastLogin(*u.LastLogin)
	}
	return built, nil
}

func (u *UserBuilder) BuildSnapshot() user.Snapshot {
	return user.Snapshot{
		ID:           uuid.New(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.Now,
		UpdatedAt:    u.Now,
		LastLogin:    u.LastLogin,
	}
}

func (u *UserBuilder) BuildView() *queries.UserView {
	return &queries.UserView{
		ID:        uuid.New(),
		Email:     u.Email,
		CreatedAt: u.Now,
		UpdatedAt: u.Now,
		LastLogin: u.LastLogin,
	}
}

// Fluent builder methods
func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	u.PasswordHash = hash
	return u
}

func (u *UserBuilder) WithLastLogin(t time.Time) *UserBuilder {
	u.LastLogin = &t
	return u
}
