package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/pkg/category"
)

func fixtureTransactions() []Transaction {
	return []Transaction{
		{
			ID:           "tx-1",
			CategoryName: "Food",
			Amount:       decimal.NewFromInt(50000),
			Kind:         category.KindExpense,
			Description:  "Weekly Groceries",
			Date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          "tx-2",
			Amount:      decimal.NewFromInt(15000),
			Kind:        category.KindExpense,
			Description: "Parking",
			Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           "tx-3",
			CategoryName: "Salary",
			Amount:       decimal.NewFromInt(8000000),
			Kind:         category.KindIncome,
			Description:  "March salary",
			Date:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           "tx-4",
			CategoryName: "Food",
			Amount:       decimal.NewFromInt(30000),
			Kind:         category.KindExpense,
			Description:  "Dinner out",
			Date:         time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestApply(t *testing.T) {
	t.Run("returns everything date-descending with an empty filter", func(t *testing.T) {
		result := Apply(fixtureTransactions(), Filter{})

		require.Len(t, result, 4)
		for i := 1; i < len(result); i++ {
			assert.False(t, result[i-1].Date.Before(result[i].Date))
		}
	})

	t.Run("is deterministic for equal inputs", func(t *testing.T) {
		filter := Filter{Month: 3, Year: 2025}

		first := Apply(fixtureTransactions(), filter)
		second := Apply(fixtureTransactions(), filter)

		assert.Equal(t, first, second)
	})

	t.Run("matches month and year together", func(t *testing.T) {
		result := Apply(fixtureTransactions(), Filter{Month: 12, Year: 2024})

		require.Len(t, result, 1)
		assert.Equal(t, "tx-4", result[0].ID)
	})

	t.Run("matches the resolved category name including the fallback", func(t *testing.T) {
		result := Apply(fixtureTransactions(), Filter{Category: Uncategorized})

		require.Len(t, result, 1)
		assert.Equal(t, "tx-2", result[0].ID)
	})

	t.Run("searches descriptions case-insensitively", func(t *testing.T) {
		result := Apply(fixtureTransactions(), Filter{Search: "groceries"})

		require.Len(t, result, 1)
		assert.Equal(t, "tx-1", result[0].ID)
	})

	t.Run("reversing the sort direction reverses distinct dates only", func(t *testing.T) {
		descending := Apply(fixtureTransactions(), Filter{})
		ascending := Apply(fixtureTransactions(), Filter{DateAscending: true})

		assert.Equal(t, descending[len(descending)-1].Date, ascending[0].Date)
		assert.Equal(t, descending[0].Date, ascending[len(ascending)-1].Date)
	})

	t.Run("keeps the prior relative order of equal dates", func(t *testing.T) {
		result := Apply(fixtureTransactions(), Filter{Month: 3, Year: 2025})

		require.Len(t, result, 3)
		assert.Equal(t, "tx-1", result[0].ID)
		assert.Equal(t, "tx-2", result[1].ID, "equal dates should keep their input order")
	})
}

func TestAvailableYears(t *testing.T) {
	t.Run("lists distinct years ascending", func(t *testing.T) {
		years := AvailableYears(fixtureTransactions())

		assert.Equal(t, []int{2024, 2025}, years)
	})

	t.Run("is empty for an empty collection", func(t *testing.T) {
		assert.Empty(t, AvailableYears(nil))
	})
}
