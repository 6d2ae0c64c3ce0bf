//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"gin-auth-core/internal/domain/event"
	"gin-auth-core/internal/domain/user"
	reqdto "gin-auth-core/internal/handler/dto/request"
	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/clock"
	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/pkg/jwt"
	"gin-auth-core/internal/usecase/commands"
	"gin-auth-core/internal/usecase/queries"
	"gin-auth-core/internal/usecase/shared"
	"gin-auth-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, dbtx db.DBTX, u *user.User) error {
	args := m.Called(ctx, dbtx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, dbtx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error) {
	args := m.Called(ctx, dbtx, email)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) RequireByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, dbtx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) RequireByEmail(ctx context.Context, dbtx db.DBTX, email user.Email) (*user.User, error) {
	args := m.Called(ctx, dbtx, email)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) AssertEmailUnique(ctx context.Context, dbtx db.DBTX, email user.Email) error {
	args := m.Called(ctx, dbtx, email)
	return args.Error(0)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Publish(ctx context.Context, dbtx db.DBTX, e event.DomainEvent) error {
	args := m.Called(ctx, dbtx, e)
	return args.Error(0)
}

func (m *MockEventRepository) FindByAggregateID(ctx context.Context, dbtx db.DBTX, aggregateID uuid.UUID) ([]event.DomainEvent, error) {
	args := m.Called(ctx, dbtx, aggregateID)
	if events := args.Get(0); events != nil {
		return events.([]event.DomainEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserReadStore struct {
	mock.Mock
}

func (m *MockUserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*queries.UserView), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubUow runs the unit body directly; transaction mechanics are exercised
// by the e2e suite against a real database.
type stubUow struct {
	users shared.UserRepository
}

func (s *stubUow) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, stubTx{users: s.users})
}

func (s *stubUow) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

type stubTx struct {
	users shared.UserRepository
}

func (t stubTx) Users() shared.UserRepository { return t.users }
func (t stubTx) DB() db.DBTX                  { return nil }

type authFixture struct {
	users     *MockUserRepository
	events    *MockEventRepository
	readStore *MockUserReadStore
	clock     *clock.MockClock
	jwt       jwt.Service
	commands  commands.AuthCommands
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		users:     new(MockUserRepository),
		events:    new(MockEventRepository),
		readStore: new(MockUserReadStore),
		clock:     clock.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		jwt:       jwt.NewService("test-secret-key", 15*time.Minute, 7*24*time.Hour),
	}
	f.commands = commands.NewAuthCommands(&stubUow{users: f.users}, f.events, f.readStore, f.jwt, f.clock)
	return f
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	req := builder.NewAuthBuilder().BuildRegisterDTO()

	t.Run("success: persists the user and emits user.registered", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(u *user.User) bool {
			return u.Email().Value() == req.Email && u.Authenticate(req.Password)
		})).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e event.DomainEvent) bool {
			return e.Name() == event.NameUserRegistered
		})).Return(nil)

		result, err := f.commands.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, req.Email, result.User.Email)
		assert.NotEmpty(t, result.TokenPair.AccessToken)
		assert.NotEmpty(t, result.TokenPair.RefreshToken)
		f.users.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("error: duplicate email detected by the uniqueness check", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything).
			Return(infra.WrapRepoErr("email taken", assert.AnError, infra.KindDuplicateKey))

		result, err := f.commands.Register(ctx, req)
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrUserAlreadyExists)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error: unique index fires on insert despite the check", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.Anything).
			Return(infra.WrapRepoErr("unique violation", assert.AnError, infra.KindDuplicateKey))

		result, err := f.commands.Register(ctx, req)
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrUserAlreadyExists)
	})

	t.Run("error: invalid email fails before any persistence", func(t *testing.T) {
		f := newAuthFixture(t)

		result, err := f.commands.Register(ctx, reqdto.RegisterRequest{Email: "not-an-email", Password: req.Password})
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidEmail)
		f.users.AssertNotCalled(t, "AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error: short password fails before any persistence", func(t *testing.T) {
		f := newAuthFixture(t)

		result, err := f.commands.Register(ctx, reqdto.RegisterRequest{Email: req.Email, Password: "short"})
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidPassword)
		f.users.AssertNotCalled(t, "AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("event publish failure never fails registration", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		result, err := f.commands.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, result)
		f.events.AssertExpectations(t)
	})

	t.Run("nil event repository skips emission entirely", func(t *testing.T) {
		f := newAuthFixture(t)
		cmds := commands.NewAuthCommands(&stubUow{users: f.users}, nil, f.readStore, f.jwt, f.clock)
		f.users.On("AssertEmailUnique", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := cmds.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, result)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	req := builder.NewAuthBuilder().BuildLoginDTO()

	storedUser := func(t *testing.T) *user.User {
		t.Helper()
		u, err := builder.NewUserBuilder().BuildDomainWithPassword(ctx, req.Password)
		require.NoError(t, err)
		return u
	}

	t.Run("success: verifies credentials, records the login, emits user.logged_in", func(t *testing.T) {
		f := newAuthFixture(t)
		stored := storedUser(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(stored, nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(u *user.User) bool {
			return u.LastLogin() != nil && u.LastLogin().Equal(f.clock.Now())
		})).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e event.DomainEvent) bool {
			return e.Name() == event.NameUserLoggedIn && e.AggregateID() == stored.ID()
		})).Return(nil)

		result, err := f.commands.Login(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, stored.ID(), result.User.ID)
		require.NotNil(t, result.User.LastLogin)
		assert.NotEmpty(t, result.TokenPair.AccessToken)
		f.users.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("error: unknown email yields the generic credential error", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

		result, err := f.commands.Login(ctx, req)
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error: wrong password yields the same generic error", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(storedUser(t), nil)

		result, err := f.commands.Login(ctx, reqdto.LoginRequest{Email: req.Email, Password: "wrong-password"})
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error: malformed email never leaks a format error", func(t *testing.T) {
		f := newAuthFixture(t)

		result, err := f.commands.Login(ctx, reqdto.LoginRequest{Email: "not-an-email", Password: req.Password})
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, errs.ErrInvalidEmail)
		f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error: empty password yields the generic error", func(t *testing.T) {
		f := newAuthFixture(t)

		result, err := f.commands.Login(ctx, reqdto.LoginRequest{Email: req.Email, Password: ""})
		require.Nil(t, result)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("error: repository failure is not masked as bad credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, infra.WrapRepoErr("query failed", assert.AnError, infra.KindDBFailure))

		result, err := f.commands.Login(ctx, req)
		require.Nil(t, result)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("error: failing to record last_login fails the login", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(storedUser(t), nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		result, err := f.commands.Login(ctx, req)
		require.Nil(t, result)
		require.Error(t, err)
	})

	t.Run("event publish failure never fails login", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(storedUser(t), nil)
		f.users.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		result, err := f.commands.Login(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, result)
	})

	t.Run("failure paths burn a full password comparison", func(t *testing.T) {
		// Verification at the configured bcrypt cost takes well over 50ms;
		// a fast rejection here would let latency reveal whether the email
		// exists.
		const minCost = 50 * time.Millisecond

		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

		start := time.Now()
		_, err := f.commands.Login(ctx, req)
		unknownEmailCost := time.Since(start)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.GreaterOrEqual(t, unknownEmailCost, minCost, "unknown-email rejection returned too quickly")

		start = time.Now()
		_, err = f.commands.Login(ctx, reqdto.LoginRequest{Email: "not-an-email", Password: req.Password})
		malformedEmailCost := time.Since(start)
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.GreaterOrEqual(t, malformedEmailCost, minCost, "malformed-email rejection returned too quickly")
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("success: exchanges a refresh token for a fresh pair", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().BuildView()
		refreshToken, err := f.jwt.GenerateRefreshToken(view.ID)
		require.NoError(t, err)
		f.readStore.On("FindByID", mock.Anything, view.ID).Return(view, nil)

		pair, err := f.commands.RefreshToken(ctx, refreshToken)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		claims, err := f.jwt.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, view.ID, claims.UserID)
		assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
	})

	t.Run("error: an access token cannot refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		accessToken, err := f.jwt.GenerateAccessToken(uuid.New())
		require.NoError(t, err)

		pair, err := f.commands.RefreshToken(ctx, accessToken)
		require.Nil(t, pair)
		require.ErrorIs(t, err, commands.ErrTokenValidation)
	})

	t.Run("error: garbage token fails validation", func(t *testing.T) {
		f := newAuthFixture(t)

		pair, err := f.commands.RefreshToken(ctx, "not.a.token")
		require.Nil(t, pair)
		require.ErrorIs(t, err, commands.ErrTokenValidation)
	})

	t.Run("error: deleted user cannot refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		userID := uuid.New()
		refreshToken, err := f.jwt.GenerateRefreshToken(userID)
		require.NoError(t, err)
		f.readStore.On("FindByID", mock.Anything, userID).Return(nil, nil)

		pair, err := f.commands.RefreshToken(ctx, refreshToken)
		require.Nil(t, pair)
		require.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}
