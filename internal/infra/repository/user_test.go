//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"gin-auth-core/internal/domain/user"
	"gin-auth-core/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, sql, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, sql, args)
	return mockArgs.Get(0).(pgx.Rows), mockArgs.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	mockArgs := m.Called(ctx, sql, args)
	return mockArgs.Get(0).(pgx.Row)
}

// rowFunc adapts a closure to pgx.Row for single-row expectations.
type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func testUser(t *testing.T) *user.User {
	t.Helper()
	email, err := user.NewEmail("test@example.com")
	require.NoError(t, err)
	password, err := user.PasswordFromHash("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
	require.NoError(t, err)
	return user.NewUser(email, password, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestUserRepository_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		execErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{
			name: "success",
		},
		{
			name:     "unique violation maps to duplicate key",
			execErr:  &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantKind: infra.KindDuplicateKey,
		},
		{
			name:     "other database error maps to db failure",
			execErr:  assert.AnError,
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(MockDBTX)
			mockDB.On("Exec", mock.Anything, mock.Anything, mock.Anything).
				Return(pgconn.NewCommandTag("INSERT 0 1"), tt.execErr)

			err := NewUserRepository().Save(ctx, mockDB, testUser(t))

			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, infra.IsKind(err, tt.wantKind))
			}
			mockDB.AssertExpectations(t)
		})
	}
}

func TestUserRepository_AssertEmailUnique(t *testing.T) {
	ctx := context.Background()
	email, err := user.NewEmail("test@example.com")
	require.NoError(t, err)

	t.Run("free email passes", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(rowFunc(func(dest ...any) error {
				*(dest[0].(*bool)) = false
				return nil
			}))

		assert.NoError(t, NewUserRepository().AssertEmailUnique(ctx, mockDB, email))
	})

	t.Run("taken email maps to duplicate key", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(rowFunc(func(dest ...any) error {
				*(dest[0].(*bool)) = true
				return nil
			}))

		err := NewUserRepository().AssertEmailUnique(ctx, mockDB, email)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})

	t.Run("query failure maps to db failure", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(rowFunc(func(dest ...any) error { return assert.AnError }))

		err := NewUserRepository().AssertEmailUnique(ctx, mockDB, email)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	email, err := user.NewEmail("test@example.com")
	require.NoError(t, err)

	scanUserRow := func(storedEmail string) rowFunc {
		return func(dest ...any) error {
			now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			rowID := uuid.New()
			id := dest[0].(*pgtype.UUID)
			copy(id.Bytes[:], rowID[:])
			id.Valid = true
			*(dest[1].(*string)) = storedEmail
			*(dest[2].(*string)) = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
			*(dest[3].(*pgtype.Timestamptz)) = pgtype.Timestamptz{Time: now, Valid: true}
			*(dest[4].(*pgtype.Timestamptz)) = pgtype.Timestamptz{Time: now, Valid: true}
			*(dest[5].(*pgtype.Timestamptz)) = pgtype.Timestamptz{Valid: false}
			return nil
		}
	}

	t.Run("found row reconstructs the aggregate", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(scanUserRow("test@example.com"))

		found, err := NewUserRepository().FindByEmail(ctx, mockDB, email)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "test@example.com", found.Email().Value())
		assert.Nil(t, found.LastLogin())
	})

	t.Run("no row is (nil, nil), not an error", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(rowFunc(func(dest ...any) error { return pgx.ErrNoRows }))

		found, err := NewUserRepository().FindByEmail(ctx, mockDB, email)
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("corrupt stored email maps to corrupt data", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(scanUserRow("not-an-email"))

		found, err := NewUserRepository().FindByEmail(ctx, mockDB, email)
		assert.Nil(t, found)
		assert.True(t, infra.IsKind(err, infra.KindCorruptData))
	})
}

func TestUserRepository_RequireByEmail(t *testing.T) {
	ctx := context.Background()
	email, err := user.NewEmail("test@example.com")
	require.NoError(t, err)

	t.Run("absence maps to not found", func(t *testing.T) {
		mockDB := new(MockDBTX)
		mockDB.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(rowFunc(func(dest ...any) error { return pgx.ErrNoRows }))

		found, err := NewUserRepository().RequireByEmail(ctx, mockDB, email)
		assert.Nil(t, found)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}
