package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/internal/event_bus"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ctx = user.WithUser(context.Background(), user.User{
	ID:          "user-1",
	Email:       "test@example.com",
	DisplayName: "Test User 1",
})

var errStub = errors.New("stub failure")

var repoStub = NewStubTransactionRepo()
var bus = event_bus.NewEventBus()

var store *Store

func setup(t *testing.T) func() {
	store = NewStore(repoStub, bus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func expenseOn(date time.Time, amount int64, description string) Transaction {
	return Transaction{
		Amount:      decimal.NewFromInt(amount),
		Kind:        category.KindExpense,
		Description: description,
		Date:        date,
	}
}

func TestStore_Add(t *testing.T) {
	t.Run("prepends the new record so the newest is first", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		older, err := store.Add(ctx, expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch"))
		require.NoError(t, err)
		newer, err := store.Add(ctx, expenseOn(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), 20000, "dinner"))
		require.NoError(t, err)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Items, 2)
		assert.Equal(t, newer.ID, snap.Items[0].ID)
		assert.Equal(t, older.ID, snap.Items[1].ID)
	})

	t.Run("carries the resolved category name from the gateway", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		repoStub.SetCategoryName("cat-1", "Food")
		draft := expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch")
		draft.CategoryID = "cat-1"

		created, err := store.Add(ctx, draft)

		require.NoError(t, err)
		assert.Equal(t, "Food", created.CategoryName)
	})
}

func TestStore_FetchAll(t *testing.T) {
	t.Run("replaces the collection with the gateway's date-descending order", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Add(ctx, expenseOn(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 10000, "groceries"))
		require.NoError(t, err)
		_, err = store.Add(ctx, expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 20000, "fuel"))
		require.NoError(t, err)

		items, err := store.FetchAll(ctx)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "groceries", items[0].Description)
		assert.Equal(t, "fuel", items[1].Description)
	})

	t.Run("keeps the previous collection when the gateway fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Add(ctx, expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch"))
		require.NoError(t, err)

		repoStub.FailNext(errStub)
		_, err = store.FetchAll(ctx)
		require.Error(t, err)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Items, 1, "stale collection should remain available")
		assert.Contains(t, snap.LastError, "stub failure")
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("returns the removed record for proof cleanup", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		draft := expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch")
		draft.ProofURL = "https://images.example.com/proof.jpg"
		created, err := store.Add(ctx, draft)
		require.NoError(t, err)

		removed, err := store.Delete(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, removed.ID)
		assert.Equal(t, "https://images.example.com/proof.jpg", removed.ProofURL)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Items)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Delete(ctx, "tx-unknown")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_CategoryDeleted(t *testing.T) {
	t.Run("blanks the cached name of transactions in a deleted category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		repoStub.SetCategoryName("cat-1", "Food")
		draft := expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch")
		draft.CategoryID = "cat-1"
		created, err := store.Add(ctx, draft)
		require.NoError(t, err)
		require.Equal(t, "Food", created.CategoryName)

		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.EventTypeCategoryDeleted, event_bus.CategoryDeleted{
			OwnerID:    "user-1",
			CategoryID: "cat-1",
		}))
		require.NoError(t, err)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Empty(t, snap.Items[0].CategoryName)
		assert.Equal(t, Uncategorized, snap.Items[0].ResolvedCategory())
	})

	t.Run("leaves other users' cached transactions untouched", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		repoStub.SetCategoryName("cat-1", "Food")
		draft := expenseOn(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 10000, "lunch")
		draft.CategoryID = "cat-1"
		_, err := store.Add(ctx, draft)
		require.NoError(t, err)

		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.EventTypeCategoryDeleted, event_bus.CategoryDeleted{
			OwnerID:    "user-2",
			CategoryID: "cat-1",
		}))
		require.NoError(t, err)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Food", snap.Items[0].CategoryName)
	})
}
