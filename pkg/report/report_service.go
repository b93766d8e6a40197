package report

import (
	"context"
	"fmt"

	"github.com/uangsakti/uangsakti/internal/utils"
	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/transaction"
)

// TransactionSource and BudgetSource are the slices of the stores the
// report service reads from.
type TransactionSource interface {
	FetchAll(ctx context.Context) ([]transaction.Transaction, error)
}

type BudgetSource interface {
	FetchAll(ctx context.Context) ([]budget.Budget, error)
}

type Service interface {
	Overview(ctx context.Context) (Overview, error)
	Breakdown(ctx context.Context) ([]CategorySlice, error)
	Summary(ctx context.Context, months int) ([]SummaryRow, error)
	BudgetConsumption(ctx context.Context, budgetId string) (Consumption, error)
}

// ServiceImpl recomputes every report from the current store contents on
// each call. Nothing is memoized, so reports always reflect the latest
// reconciled state.
type ServiceImpl struct {
	transactions TransactionSource
	budgets      BudgetSource
	clock        utils.Clock
}

func NewService(transactions TransactionSource, budgets BudgetSource, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		transactions: transactions,
		budgets:      budgets,
		clock:        clock,
	}
}

func (s *ServiceImpl) Overview(ctx context.Context) (Overview, error) {
	items, err := s.transactions.FetchAll(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	return OverviewOf(items), nil
}

func (s *ServiceImpl) Breakdown(ctx context.Context) ([]CategorySlice, error) {
	items, err := s.transactions.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return BreakdownOf(items), nil
}

// Summary returns the trailing months ending at the current month, or the
// full history when months <= 0.
func (s *ServiceImpl) Summary(ctx context.Context, months int) ([]SummaryRow, error) {
	items, err := s.transactions.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	series := MonthlySeries(items, months, s.clock.Now())
	return SummaryRows(series), nil
}

func (s *ServiceImpl) BudgetConsumption(ctx context.Context, budgetId string) (Consumption, error) {
	budgets, err := s.budgets.FetchAll(ctx)
	if err != nil {
		return Consumption{}, fmt.Errorf("failed to load budgets: %w", err)
	}
	var target *budget.Budget
	for i := range budgets {
		if budgets[i].ID == budgetId {
			target = &budgets[i]
			break
		}
	}
	if target == nil {
		return Consumption{}, budget.ErrNotFound
	}

	items, err := s.transactions.FetchAll(ctx)
	if err != nil {
		return Consumption{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	return ConsumptionOf(*target, items), nil
}
