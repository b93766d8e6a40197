package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ctx = user.WithUser(context.Background(), user.User{
	ID:          "user-1",
	Email:       "test@example.com",
	DisplayName: "Test User 1",
})

var errStub = errors.New("stub failure")

var repoStub = NewStubBudgetRepo()

var store *Store

func setup(t *testing.T) func() {
	store = NewStore(repoStub)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func marchBudget(amount int64) Budget {
	return Budget{
		CategoryID: "cat-1",
		Amount:     decimal.NewFromInt(amount),
		Month:      3,
		Year:       2025,
	}
}

func TestStore_Add(t *testing.T) {
	t.Run("appends the reconciled record", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, marchBudget(100000))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, created, snap.Items[0])
	})

	t.Run("allows duplicate category and month pairs", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Add(ctx, marchBudget(100000))
		require.NoError(t, err)
		_, err = store.Add(ctx, marchBudget(200000))
		require.NoError(t, err)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Items, 2)
	})

	t.Run("rejects an out-of-range month before calling the gateway", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		draft := marchBudget(100000)
		draft.Month = 13

		_, err := store.Add(ctx, draft)

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "month", validationErr.Field)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Add(ctx, marchBudget(0))

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "amount", validationErr.Field)
	})
}

func TestStore_Update(t *testing.T) {
	t.Run("replaces the cached record with the gateway copy", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, marchBudget(100000))
		require.NoError(t, err)

		updated, err := store.Update(ctx, created.ID, marchBudget(250000))
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(250000)))

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, updated, snap.Items[0])
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Update(ctx, "budget-unknown", marchBudget(100000))

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("records and returns the gateway failure keeping the stale collection", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, marchBudget(100000))
		require.NoError(t, err)

		repoStub.FailNext(errStub)
		err = store.Delete(ctx, created.ID)

		var gatewayErr *rest.GatewayError
		require.ErrorAs(t, err, &gatewayErr)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Items, 1, "failed delete should not shrink the collection")
		assert.Contains(t, snap.LastError, "stub failure")
	})
}
