package readstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/pgconv"
	"gin-auth-core/internal/usecase/queries"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	var (
		rowID     pgtype.UUID
		email     string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		lastLogin pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, email, created_at, updated_at, last_login
		FROM users
		WHERE id = $1`, pgconv.UUIDToPgtype(id)).
		Scan(&rowID, &email, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	return &queries.UserView{
		ID:        pgconv.UUIDFromPgtype(rowID),
		Email:     email,
		CreatedAt: pgconv.TimeFromPgtype(createdAt),
		UpdatedAt: pgconv.TimeFromPgtype(updatedAt),
		LastLogin: pgconv.TimePtrFromPgtype(lastLogin),
	}, nil
}
