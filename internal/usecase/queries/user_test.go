//go:build unit

package queries_test

import (
	"context"
	"testing"

	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/usecase/queries"
	"gin-auth-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the view for an existing user", func(t *testing.T) {
		view := builder.NewUserBuilder().BuildView()
		readStore := new(MockUserReadStore)
		readStore.On("FindByID", mock.Anything, view.ID).Return(view, nil)

		got, err := queries.NewUserQueries(readStore).GetCurrentUser(ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view, got)
	})

	t.Run("maps a missing row to the user-not-found sentinel", func(t *testing.T) {
		readStore := new(MockUserReadStore)
		readStore.On("FindByID", mock.Anything, mock.Anything).
			Return(nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound))

		got, err := queries.NewUserQueries(readStore).GetCurrentUser(ctx, uuid.New())
		assert.Nil(t, got)
		require.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("passes other failures through untranslated", func(t *testing.T) {
		readStore := new(MockUserReadStore)
		readStore.On("FindByID", mock.Anything, mock.Anything).
			Return(nil, infra.WrapRepoErr("query failed", assert.AnError, infra.KindDBFailure))

		got, err := queries.NewUserQueries(readStore).GetCurrentUser(ctx, uuid.New())
		assert.Nil(t, got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errs.ErrUserNotFound)
	})
}
