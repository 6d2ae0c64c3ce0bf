package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"gin-auth-core/internal/domain/user"
	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/pgconv"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = "id, email, password_hash, created_at, updated_at, last_login"

func (r *UserRepository) Save(ctx context.Context, dbtx db.DBTX, u *user.User) error {
	s := u.Snapshot()

	_, err := dbtx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at,
			last_login = EXCLUDED.last_login`,
		pgconv.UUIDToPgtype(s.ID),
		s.Email,
		s.PasswordHash,
		pgconv.TimeToPgtype(s.CreatedAt),
		pgconv.TimeToPgtype(s.UpdatedAt),
		pgconv.TimePtrToPgtype(s.LastLogin),
	)
	if err != nil {
		// The unique index on email backs up AssertEmailUnique
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("email already taken", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to save user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, dbtx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		pgconv.UUIDToPgtype(id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error) {
	return r.findOne(ctx, dbtx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email.Value())
}

func (r *UserRepository) RequireByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error) {
	u, err := r.FindByID(ctx, dbtx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return u, nil
}

func (r *UserRepository) RequireByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error) {
	u, err := r.FindByEmail(ctx, dbtx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return u, nil
}

func (r *UserRepository) AssertEmailUnique(ctx context.Context, dbtx db.DBTX, email user.Email) error {
	var exists bool
	err := dbtx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)",
		email.Value()).Scan(&exists)
	if err != nil {
		return infra.WrapRepoErr("failed to check email uniqueness", err)
	}
	if exists {
		return infra.WrapRepoErr("email already taken", nil, infra.KindDuplicateKey)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, dbtx db.DBTX, query string, arg any) (*user.User, error) {
	var (
		id           pgtype.UUID
		email        string
		passwordHash string
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		lastLogin    pgtype.Timestamptz
	)

	err := dbtx.QueryRow(ctx, query, arg).
		Scan(&id, &email, &passwordHash, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	u, err := user.Reconstruct(user.Snapshot{
		ID:           pgconv.UUIDFromPgtype(id),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:    pgconv.TimeFromPgtype(updatedAt),
		LastLogin:    pgconv.TimePtrFromPgtype(lastLogin),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reconstruct stored user", err, infra.KindCorruptData)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
