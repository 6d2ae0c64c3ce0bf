package shared

import (
	"context"

	"github.com/google/uuid"

	"gin-auth-core/internal/domain/event"
	"gin-auth-core/internal/domain/user"
	"gin-auth-core/internal/infra/db"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

// Tx exposes transaction-scoped repositories. A repository obtained here
// never outlives the transaction it was created for.
type Tx interface {
	Users() UserRepository
	DB() db.DBTX
}

type UserRepository interface {
	// Save upserts by id: inserts the full row or refreshes
	// email/hash/updated_at/last_login for an existing one.
	Save(ctx context.Context, dbtx db.DBTX, u *user.User) error
	// FindByID and FindByEmail return (nil, nil) when no row matches;
	// corrupt stored rows surface as errors, not as nil.
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error)
	// RequireByID and RequireByEmail treat absence as errs.ErrUserNotFound.
	RequireByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error)
	RequireByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error)
	// AssertEmailUnique fails with a duplicate-key repository error if taken.
	// The unique index on users.email still backs this check.
	AssertEmailUnique(ctx context.Context, dbtx db.DBTX, email user.Email) error
}

// EventRepository appends to the aggregate event log. Passing a nil
// EventRepository to a command simply skips event emission: the log is
// observability, not a correctness dependency of the primary write.
type EventRepository interface {
	Publish(ctx context.Context, dbtx db.DBTX, e event.DomainEvent) error
	// FindByAggregateID returns the aggregate's events ascending by occurred_at.
	FindByAggregateID(ctx context.Context, dbtx db.DBTX, aggregateID uuid.UUID) ([]event.DomainEvent, error)
}
