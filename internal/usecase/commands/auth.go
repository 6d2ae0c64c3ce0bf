package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gin-auth-core/internal/domain/event"
	"gin-auth-core/internal/domain/user"
	reqdto "gin-auth-core/internal/handler/dto/request"
	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/clock"
	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/pkg/jwt"
	"gin-auth-core/internal/pkg/password"
	"gin-auth-core/internal/usecase/queries"
	"gin-auth-core/internal/usecase/shared"
)

var (
	ErrTokenGeneration = errs.New("token generation failed")
	ErrTokenValidation = errs.New("token validation failed")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	User      user.Details
	TokenPair *TokenPair
}

type AuthCommands interface {
	Register(ctx context.Context, req reqdto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req reqdto.LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	events     shared.EventRepository // nil skips event emission
	readStore  queries.UserReadStore
	jwtService jwt.Service
	clock      clock.Clock
}

func NewAuthCommands(
	uow shared.UnitOfWork,
	events shared.EventRepository,
	readStore queries.UserReadStore,
	jwtService jwt.Service,
	clk clock.Clock,
) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		events:     events,
		readStore:  readStore,
		jwtService: jwtService,
		clock:      clk,
	}
}

// Register creates a user from validated value objects and persists it
// atomically with a best-effort UserRegistered event. Any failure up to and
// including the user insert rolls the whole unit back.
func (a *authCommandsImpl) Register(ctx context.Context, req reqdto.RegisterRequest) (*AuthResult, error) {
	email, err := user.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}

	pass, err := user.NewPassword(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	var registered *user.User
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Users().AssertEmailUnique(ctx, tx.DB(), email); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrUserAlreadyExists)
			}
			return err
		}

		u := user.NewUser(email, pass, a.clock.Now())
		if err := tx.Users().Save(ctx, tx.DB(), u); err != nil {
			// The unique index can still fire between the assert and the insert
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrUserAlreadyExists)
			}
			return err
		}
		registered = u

		a.publish(ctx, tx.DB(), event.NewUserRegistered(u.ID(), u.Email().Value(), a.clock.Now()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := a.issueTokens(registered.ID())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: registered.Details(), TokenPair: tokens}, nil
}

// Login verifies credentials and records the login. Every failure path runs
// exactly one bcrypt comparison of real cost before returning, so response
// latency does not reveal whether the email exists.
func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*AuthResult, error) {
	var authenticated *user.User
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		email, emailErr := user.NewEmail(req.Email)
		if emailErr != nil || req.Password == "" {
			password.DummyCompare(req.Password)
			return errs.ErrInvalidCredentials
		}

		u, err := tx.Users().FindByEmail(ctx, tx.DB(), email)
		if err != nil {
			return err
		}
		if u == nil {
			password.DummyCompare(req.Password)
			return errs.ErrInvalidCredentials
		}

		if !u.Authenticate(req.Password) {
			return errs.ErrInvalidCredentials
		}

		updated := u.UpdateLastLogin(a.clock.Now())
		if err := tx.Users().Save(ctx, tx.DB(), updated); err != nil {
			return err
		}
		authenticated = updated

		a.publish(ctx, tx.DB(), event.NewUserLoggedIn(updated.ID(), a.clock.Now()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := a.issueTokens(authenticated.ID())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: authenticated.Details(), TokenPair: tokens}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	// Validate the user still exists before minting fresh tokens
	userView, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil || userView == nil {
		return nil, errs.ErrUserNotFound
	}

	return a.issueTokens(claims.UserID)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// publish appends a domain event inside the transaction's scope but treats
// failure as non-fatal: the primary write must not depend on the event log.
// A failed statement would abort the enclosing Postgres transaction, so the
// append runs under a savepoint (pgx nested transaction) that is rolled back
// alone on failure.
func (a *authCommandsImpl) publish(ctx context.Context, dbtx db.DBTX, e event.DomainEvent) {
	if a.events == nil {
		return
	}

	err := func() error {
		beginner, ok := dbtx.(txBeginner)
		if !ok {
			return a.events.Publish(ctx, dbtx, e)
		}

		nested, err := beginner.Begin(ctx)
		if err != nil {
			return err
		}
		if err := a.events.Publish(ctx, nested, e); err != nil {
			_ = nested.Rollback(ctx)
			return err
		}
		return nested.Commit(ctx)
	}()
	if err != nil {
		slog.Warn("failed to publish domain event",
			"event", string(e.Name()),
			"aggregate_id", e.AggregateID().String(),
			"error", err.Error())
	}
}

func (a *authCommandsImpl) issueTokens(userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := a.jwtService.GenerateAccessToken(userID)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	refreshToken, err := a.jwtService.GenerateRefreshToken(userID)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
