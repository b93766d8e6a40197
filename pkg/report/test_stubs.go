package report

import (
	"context"

	"github.com/uangsakti/uangsakti/pkg/budget"
	"github.com/uangsakti/uangsakti/pkg/transaction"
)

type StubTransactionSource struct {
	Items []transaction.Transaction
	Err   error
}

func (s *StubTransactionSource) FetchAll(ctx context.Context) ([]transaction.Transaction, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Items, nil
}

type StubBudgetSource struct {
	Items []budget.Budget
	Err   error
}

func (s *StubBudgetSource) FetchAll(ctx context.Context) ([]budget.Budget, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Items, nil
}
