package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/transaction"
)

func tx(kind category.Kind, amount int64, categoryId, categoryName string, date time.Time) transaction.Transaction {
	return transaction.Transaction{
		CategoryID:   categoryId,
		CategoryName: categoryName,
		Amount:       decimal.NewFromInt(amount),
		Kind:         kind,
		Date:         date,
	}
}

func TestOverviewOf(t *testing.T) {
	t.Run("sums both sides of the ledger", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindIncome, 8000000, "cat-s", "Salary", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 30000, "cat-f", "Food", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 20000, "cat-f", "Food", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)),
		}

		overview := OverviewOf(items)

		assert.True(t, overview.TotalIncome.Equal(decimal.NewFromInt(8000000)))
		assert.True(t, overview.TotalExpenses.Equal(decimal.NewFromInt(50000)))
		assert.True(t, overview.NetSavings.Equal(decimal.NewFromInt(7950000)))
	})

	t.Run("is all zeros for an empty history", func(t *testing.T) {
		overview := OverviewOf(nil)

		assert.True(t, overview.TotalIncome.IsZero())
		assert.True(t, overview.TotalExpenses.IsZero())
		assert.True(t, overview.NetSavings.IsZero())
	})
}

func TestBreakdownOf(t *testing.T) {
	t.Run("groups dangling references under the fallback name", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindExpense, 30000, "cat-f", "Food", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 10000, "cat-gone", "", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 5000, "", "", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)),
			tx(category.KindIncome, 8000000, "cat-s", "Salary", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)),
		}

		breakdown := BreakdownOf(items)

		require.Len(t, breakdown, 2)
		assert.Equal(t, "Food", breakdown[0].Name)
		assert.True(t, breakdown[0].Amount.Equal(decimal.NewFromInt(30000)))
		assert.Equal(t, transaction.Uncategorized, breakdown[1].Name)
		assert.True(t, breakdown[1].Amount.Equal(decimal.NewFromInt(15000)))
	})

	t.Run("orders slices by amount descending, name ascending on ties", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindExpense, 10000, "cat-b", "Books", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 10000, "cat-a", "Art", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 90000, "cat-f", "Food", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)),
		}

		breakdown := BreakdownOf(items)

		require.Len(t, breakdown, 3)
		assert.Equal(t, "Food", breakdown[0].Name)
		assert.Equal(t, "Art", breakdown[1].Name)
		assert.Equal(t, "Books", breakdown[2].Name)
	})
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("returns a continuous trailing window with zero-filled months", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindIncome, 8000000, "cat-s", "Salary", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 50000, "cat-f", "Food", time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)),
		}

		series := MonthlySeries(items, 6, now)

		require.Len(t, series, 6)
		assert.Equal(t, time.October, series[0].Month)
		assert.Equal(t, 2024, series[0].Year)
		assert.Equal(t, time.March, series[5].Month)
		assert.Equal(t, 2025, series[5].Year)

		// November carries the expense, the untouched months stay at zero.
		assert.True(t, series[1].Expenses.Equal(decimal.NewFromInt(50000)))
		assert.True(t, series[2].Income.IsZero())
		assert.True(t, series[2].Expenses.IsZero())
		assert.True(t, series[5].Income.Equal(decimal.NewFromInt(8000000)))
	})

	t.Run("all-time mode buckets only months containing transactions", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindExpense, 10000, "cat-f", "Food", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)),
			tx(category.KindIncome, 9000000, "cat-s", "Salary", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		}

		series := MonthlySeries(items, 0, now)

		require.Len(t, series, 2)
		assert.Equal(t, 2023, series[0].Year)
		assert.Equal(t, time.May, series[0].Month)
		assert.Equal(t, 2025, series[1].Year)
	})
}

func TestSummaryRows(t *testing.T) {
	t.Run("computes savings and rate, most recent first", func(t *testing.T) {
		series := []MonthlyPoint{
			{Year: 2025, Month: time.February, Income: decimal.NewFromInt(1000000), Expenses: decimal.NewFromInt(250000)},
			{Year: 2025, Month: time.March, Income: decimal.NewFromInt(2000000), Expenses: decimal.NewFromInt(500000)},
		}

		rows := SummaryRows(series)

		require.Len(t, rows, 2)
		assert.Equal(t, time.March, rows[0].Month)
		assert.True(t, rows[0].Savings.Equal(decimal.NewFromInt(1500000)))
		assert.InDelta(t, 75, rows[0].SavingsRate, 0.0001)
		assert.InDelta(t, 75, rows[1].SavingsRate, 0.0001)
	})

	t.Run("savings rate is zero for a month without income", func(t *testing.T) {
		series := []MonthlyPoint{
			{Year: 2025, Month: time.March, Expenses: decimal.NewFromInt(500000)},
		}

		rows := SummaryRows(series)

		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].SavingsRate)
		assert.True(t, rows[0].Savings.Equal(decimal.NewFromInt(-500000)))
	})
}

func TestConsumptionOf(t *testing.T) {
	marchFood := budget.Budget{
		ID:         "budget-1",
		CategoryID: "cat-f",
		Amount:     decimal.NewFromInt(100000),
		Month:      3,
		Year:       2025,
	}

	t.Run("reports spending over the ceiling as over budget", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindExpense, 60000, "cat-f", "Food", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 50000, "cat-f", "Food", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)),
		}

		consumption := ConsumptionOf(marchFood, items)

		assert.True(t, consumption.Spent.Equal(decimal.NewFromInt(110000)))
		assert.InDelta(t, 110, consumption.Percentage, 0.0001)
		assert.True(t, consumption.OverBudget)
	})

	t.Run("ignores other categories, months and income", func(t *testing.T) {
		items := []transaction.Transaction{
			tx(category.KindExpense, 60000, "cat-f", "Food", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 99999, "cat-t", "Transport", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
			tx(category.KindExpense, 99999, "cat-f", "Food", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)),
			tx(category.KindIncome, 99999, "cat-f", "Food", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		}

		consumption := ConsumptionOf(marchFood, items)

		assert.True(t, consumption.Spent.Equal(decimal.NewFromInt(60000)))
		assert.InDelta(t, 60, consumption.Percentage, 0.0001)
		assert.False(t, consumption.OverBudget)
	})

	t.Run("percentage stays zero for a non-positive ceiling", func(t *testing.T) {
		zeroBudget := marchFood
		zeroBudget.Amount = decimal.Zero

		consumption := ConsumptionOf(zeroBudget, []transaction.Transaction{
			tx(category.KindExpense, 60000, "cat-f", "Food", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		})

		assert.Zero(t, consumption.Percentage)
		assert.False(t, consumption.OverBudget)
	})
}
