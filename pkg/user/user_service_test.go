package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/internal/rest"
)

const testSecret = "test-secret"

var ctx = context.Background()

var repoStub = NewStubUserRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewUserService(repoStub, testSecret, time.Hour)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_SignUp(t *testing.T) {
	t.Run("registers a user and issues a verifiable session token", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, token, err := service.SignUp(ctx, "Budi@Example.com", "Budi", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "budi@example.com", created.Email, "email should be normalized")

		userId, err := VerifyToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, created.ID, userId)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, _, err := service.SignUp(ctx, "budi@example.com", "Budi", "correct-horse")
		require.NoError(t, err)

		_, _, err = service.SignUp(ctx, "budi@example.com", "Other Budi", "other-password")

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, _, err := service.SignUp(ctx, "budi@example.com", "Budi", "short")

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "password", validationErr.Field)
	})
}

func TestServiceImpl_SignIn(t *testing.T) {
	t.Run("returns the user and a token for valid credentials", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, _, err := service.SignUp(ctx, "budi@example.com", "Budi", "correct-horse")
		require.NoError(t, err)

		found, token, err := service.SignIn(ctx, "budi@example.com", "correct-horse")

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("rejects a wrong password without leaking which part failed", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, _, err := service.SignUp(ctx, "budi@example.com", "Budi", "correct-horse")
		require.NoError(t, err)

		_, _, err = service.SignIn(ctx, "budi@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrBadCredentials)

		_, _, err = service.SignIn(ctx, "unknown@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestServiceImpl_GetCurrentUser(t *testing.T) {
	t.Run("resolves the user carried in the context", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, _, err := service.SignUp(ctx, "budi@example.com", "Budi", "correct-horse")
		require.NoError(t, err)

		found, err := service.GetCurrentUser(WithUser(ctx, created))

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("fails without a user in the context", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.GetCurrentUser(ctx)

		assert.ErrorIs(t, err, rest.ErrUnauthenticated)
	})
}
