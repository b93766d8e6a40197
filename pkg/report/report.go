package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/transaction"
)

// Overview holds the headline totals for a user's full history.
type Overview struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	NetSavings    decimal.Decimal
}

// CategorySlice is one slice of the expense breakdown. Transactions whose
// category no longer resolves are grouped under "Uncategorized".
type CategorySlice struct {
	Name   string
	Amount decimal.Decimal
}

// MonthlyPoint is one month of the income/expense series.
type MonthlyPoint struct {
	Year     int
	Month    time.Month
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// SummaryRow extends a monthly point with savings and the savings rate
// as a percentage of income.
type SummaryRow struct {
	Year        int
	Month       time.Month
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Savings     decimal.Decimal
	SavingsRate float64
}

// Consumption describes how much of a monthly budget its matching
// expenses have used up.
type Consumption struct {
	Spent      decimal.Decimal
	Percentage float64
	OverBudget bool
}

func OverviewOf(items []transaction.Transaction) Overview {
	o := Overview{}
	for _, t := range items {
		switch t.Kind {
		case category.KindIncome:
			o.TotalIncome = o.TotalIncome.Add(t.Amount)
		case category.KindExpense:
			o.TotalExpenses = o.TotalExpenses.Add(t.Amount)
		}
	}
	o.NetSavings = o.TotalIncome.Sub(o.TotalExpenses)
	return o
}

// BreakdownOf aggregates expenses by resolved category name. Slices are
// ordered by amount descending, name ascending on ties, so the result is
// deterministic for equal inputs.
func BreakdownOf(items []transaction.Transaction) []CategorySlice {
	totals := map[string]decimal.Decimal{}
	for _, t := range items {
		if t.Kind != category.KindExpense {
			continue
		}
		name := t.ResolvedCategory()
		totals[name] = totals[name].Add(t.Amount)
	}

	slices := make([]CategorySlice, 0, len(totals))
	for name, amount := range totals {
		slices = append(slices, CategorySlice{Name: name, Amount: amount})
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Amount.Equal(slices[j].Amount) {
			return slices[i].Amount.GreaterThan(slices[j].Amount)
		}
		return slices[i].Name < slices[j].Name
	})
	return slices
}

// MonthlySeries buckets income and expenses per calendar month. With
// months > 0 it returns exactly that many trailing months ending at the
// month of now, zero-filled where no transactions fall; otherwise it
// returns only the months that contain transactions, covering the whole
// history. Either way the series is chronological.
func MonthlySeries(items []transaction.Transaction, months int, now time.Time) []MonthlyPoint {
	type monthKey struct {
		year  int
		month time.Month
	}
	buckets := map[monthKey]*MonthlyPoint{}
	for _, t := range items {
		key := monthKey{t.Date.Year(), t.Date.Month()}
		point, ok := buckets[key]
		if !ok {
			point = &MonthlyPoint{Year: key.year, Month: key.month}
			buckets[key] = point
		}
		switch t.Kind {
		case category.KindIncome:
			point.Income = point.Income.Add(t.Amount)
		case category.KindExpense:
			point.Expenses = point.Expenses.Add(t.Amount)
		}
	}

	if months <= 0 {
		series := make([]MonthlyPoint, 0, len(buckets))
		for _, point := range buckets {
			series = append(series, *point)
		}
		sort.Slice(series, func(i, j int) bool {
			if series[i].Year != series[j].Year {
				return series[i].Year < series[j].Year
			}
			return series[i].Month < series[j].Month
		})
		return series
	}

	series := make([]MonthlyPoint, 0, months)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		key := monthKey{cursor.Year(), cursor.Month()}
		if point, ok := buckets[key]; ok {
			series = append(series, *point)
		} else {
			series = append(series, MonthlyPoint{Year: key.year, Month: key.month})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return series
}

// SummaryRows turns a monthly series into summary rows ordered most
// recent first. The savings rate is zero when a month has no income.
func SummaryRows(series []MonthlyPoint) []SummaryRow {
	rows := make([]SummaryRow, 0, len(series))
	for _, point := range series {
		row := SummaryRow{
			Year:     point.Year,
			Month:    point.Month,
			Income:   point.Income,
			Expenses: point.Expenses,
			Savings:  point.Income.Sub(point.Expenses),
		}
		if point.Income.IsPositive() {
			rate, _ := row.Savings.Div(point.Income).Mul(decimal.NewFromInt(100)).Float64()
			row.SavingsRate = rate
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Month > rows[j].Month
	})
	return rows
}

// ConsumptionOf sums the expenses recorded against the budget's category
// in the budget's month and reports the percentage used. A non-positive
// budget amount yields a zero percentage.
func ConsumptionOf(b budget.Budget, items []transaction.Transaction) Consumption {
	spent := decimal.Zero
	for _, t := range items {
		if t.Kind != category.KindExpense {
			continue
		}
		if t.CategoryID != b.CategoryID {
			continue
		}
		if int(t.Date.Month()) != b.Month || t.Date.Year() != b.Year {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	c := Consumption{Spent: spent}
	if b.Amount.IsPositive() {
		percentage, _ := spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Float64()
		c.Percentage = percentage
		c.OverBudget = spent.GreaterThan(b.Amount)
	}
	return c
}
