package budget

import (
	"context"
	"slices"
	"strconv"
	"time"
)

type StubBudgetRepo struct {
	nextId   int
	data     map[string][]Budget
	failNext error
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{data: map[string][]Budget{}}
}

func (s *StubBudgetRepo) FailNext(err error) {
	s.failNext = err
}

func (s *StubBudgetRepo) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *StubBudgetRepo) ListByOwner(ctx context.Context, ownerId string) ([]Budget, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return slices.Clone(s.data[ownerId]), nil
}

func (s *StubBudgetRepo) Create(ctx context.Context, ownerId string, draft Budget) (Budget, error) {
	if err := s.takeFailure(); err != nil {
		return Budget{}, err
	}
	s.nextId++
	draft.ID = "budget-" + strconv.Itoa(s.nextId)
	draft.CreatedAt = time.Now().UTC()
	s.data[ownerId] = append(s.data[ownerId], draft)
	return draft, nil
}

func (s *StubBudgetRepo) Update(ctx context.Context, ownerId string, id string, patch Budget) (Budget, bool, error) {
	if err := s.takeFailure(); err != nil {
		return Budget{}, false, err
	}
	for i, b := range s.data[ownerId] {
		if b.ID == id {
			patch.ID = id
			patch.CreatedAt = b.CreatedAt
			s.data[ownerId][i] = patch
			return patch, true, nil
		}
	}
	return Budget{}, false, nil
}

func (s *StubBudgetRepo) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	if err := s.takeFailure(); err != nil {
		return false, err
	}
	before := len(s.data[ownerId])
	s.data[ownerId] = slices.DeleteFunc(s.data[ownerId], func(b Budget) bool { return b.ID == id })
	return len(s.data[ownerId]) < before, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.data = map[string][]Budget{}
	s.failNext = nil
}
