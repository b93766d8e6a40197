package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/internal/event_bus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ctx = user.WithUser(context.Background(), user.User{
	ID:          "user-1",
	Email:       "test@example.com",
	DisplayName: "Test User 1",
})

var errStub = errors.New("stub failure")

var repoStub = NewStubGoalRepo()
var bus = event_bus.NewEventBus()

var store *Store

func setup(t *testing.T) func() {
	store = NewStore(repoStub, bus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestStore_AddFunds(t *testing.T) {
	t.Run("raises the current amount by the given value", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, Goal{
			Name:          "Emergency fund",
			TargetAmount:  decimal.NewFromInt(500000),
			CurrentAmount: decimal.NewFromInt(100000),
		})
		require.NoError(t, err)

		updated, err := store.AddFunds(ctx, created.ID, decimal.NewFromInt(50000))

		require.NoError(t, err)
		assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(150000)))
		assert.False(t, updated.Achieved())
	})

	t.Run("clamps the balance at the target amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, Goal{
			Name:          "Holiday",
			TargetAmount:  decimal.NewFromInt(500000),
			CurrentAmount: decimal.NewFromInt(450000),
		})
		require.NoError(t, err)

		updated, err := store.AddFunds(ctx, created.ID, decimal.NewFromInt(100000))

		require.NoError(t, err)
		assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(500000)),
			"balance should stop at the target, got %s", updated.CurrentAmount)
		assert.True(t, updated.Achieved())
	})

	t.Run("rejects a non-positive amount before calling the gateway", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := store.Add(ctx, Goal{
			Name:         "Holiday",
			TargetAmount: decimal.NewFromInt(500000),
		})
		require.NoError(t, err)

		_, err = store.AddFunds(ctx, created.ID, decimal.Zero)

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "amount", validationErr.Field)
	})

	t.Run("returns not found for an unknown goal", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.AddFunds(ctx, "goal-unknown", decimal.NewFromInt(1000))

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("publishes an achievement event exactly once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		var achieved []event_bus.GoalAchieved
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.EventTypeGoalAchieved,
			func(e event_bus.EventT[event_bus.GoalAchieved]) error {
				achieved = append(achieved, e.Data)
				return nil
			})
		defer unsubscribe()

		created, err := store.Add(ctx, Goal{
			Name:          "Holiday",
			TargetAmount:  decimal.NewFromInt(500000),
			CurrentAmount: decimal.NewFromInt(450000),
		})
		require.NoError(t, err)

		_, err = store.AddFunds(ctx, created.ID, decimal.NewFromInt(100000))
		require.NoError(t, err)
		_, err = store.AddFunds(ctx, created.ID, decimal.NewFromInt(100000))
		require.NoError(t, err)

		require.Len(t, achieved, 1, "already achieved goals should not publish again")
		assert.Equal(t, created.ID, achieved[0].GoalID)
		assert.Equal(t, "Holiday", achieved[0].Name)
	})
}

func TestStore_Add(t *testing.T) {
	t.Run("rejects a current amount above the target", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := store.Add(ctx, Goal{
			Name:          "Holiday",
			TargetAmount:  decimal.NewFromInt(100000),
			CurrentAmount: decimal.NewFromInt(200000),
		})

		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "currentAmount", validationErr.Field)
	})

	t.Run("records and returns the gateway failure", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		repoStub.FailNext(errStub)
		_, err := store.Add(ctx, Goal{
			Name:         "Holiday",
			TargetAmount: decimal.NewFromInt(100000),
		})

		var gatewayErr *rest.GatewayError
		require.ErrorAs(t, err, &gatewayErr)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Contains(t, snap.LastError, "stub failure")
	})
}

func TestGoal_Progress(t *testing.T) {
	tests := []struct {
		name     string
		goal     Goal
		expected float64
	}{
		{
			name:     "half funded",
			goal:     Goal{TargetAmount: decimal.NewFromInt(200000), CurrentAmount: decimal.NewFromInt(100000)},
			expected: 50,
		},
		{
			name:     "fully funded",
			goal:     Goal{TargetAmount: decimal.NewFromInt(200000), CurrentAmount: decimal.NewFromInt(200000)},
			expected: 100,
		},
		{
			name:     "zero target",
			goal:     Goal{TargetAmount: decimal.Zero, CurrentAmount: decimal.NewFromInt(100000)},
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.goal.Progress(), 0.0001)
		})
	}
}
