package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/internal/utils"
	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/transaction"
)

var ctx = context.Background()

func TestServiceImpl_Summary(t *testing.T) {
	t.Run("windows the series against the clock's current month", func(t *testing.T) {
		transactions := &StubTransactionSource{Items: []transaction.Transaction{
			tx(category.KindIncome, 8000000, "cat-s", "Salary", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		}}
		clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)}
		service := NewService(transactions, &StubBudgetSource{}, clock)

		rows, err := service.Summary(ctx, 3)

		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, time.March, rows[0].Month)
		assert.Equal(t, time.January, rows[2].Month)
	})

	t.Run("propagates a transaction source failure", func(t *testing.T) {
		service := NewService(&StubTransactionSource{Err: errors.New("stub failure")}, &StubBudgetSource{}, &utils.SystemClock{})

		_, err := service.Summary(ctx, 6)

		assert.ErrorContains(t, err, "stub failure")
	})
}

func TestServiceImpl_BudgetConsumption(t *testing.T) {
	marchFood := budget.Budget{
		ID:         "budget-1",
		CategoryID: "cat-f",
		Amount:     decimal.NewFromInt(100000),
		Month:      3,
		Year:       2025,
	}

	t.Run("resolves the budget and sums its matching expenses", func(t *testing.T) {
		transactions := &StubTransactionSource{Items: []transaction.Transaction{
			tx(category.KindExpense, 110000, "cat-f", "Food", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		}}
		service := NewService(transactions, &StubBudgetSource{Items: []budget.Budget{marchFood}}, &utils.SystemClock{})

		consumption, err := service.BudgetConsumption(ctx, "budget-1")

		require.NoError(t, err)
		assert.True(t, consumption.OverBudget)
		assert.InDelta(t, 110, consumption.Percentage, 0.0001)
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		service := NewService(&StubTransactionSource{}, &StubBudgetSource{}, &utils.SystemClock{})

		_, err := service.BudgetConsumption(ctx, "budget-unknown")

		assert.ErrorIs(t, err, budget.ErrNotFound)
	})
}
