package transaction

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"time"
)

// StubTransactionRepo is an in-memory gateway for tests. It reproduces the
// real gateway's contract: date-descending listing and a category join
// resolved from the names registered with SetCategoryName.
type StubTransactionRepo struct {
	nextId        int
	data          map[string][]Transaction
	categoryNames map[string]string
	failNext      error
}

func NewStubTransactionRepo() *StubTransactionRepo {
	return &StubTransactionRepo{
		data:          map[string][]Transaction{},
		categoryNames: map[string]string{},
	}
}

func (s *StubTransactionRepo) SetCategoryName(categoryId, name string) {
	s.categoryNames[categoryId] = name
}

func (s *StubTransactionRepo) RemoveCategory(categoryId string) {
	delete(s.categoryNames, categoryId)
}

func (s *StubTransactionRepo) FailNext(err error) {
	s.failNext = err
}

func (s *StubTransactionRepo) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *StubTransactionRepo) join(t Transaction) Transaction {
	t.CategoryName = s.categoryNames[t.CategoryID]
	return t
}

func (s *StubTransactionRepo) ListByOwner(ctx context.Context, ownerId string) ([]Transaction, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(s.data[ownerId]))
	for _, t := range s.data[ownerId] {
		out = append(out, s.join(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	return out, nil
}

func (s *StubTransactionRepo) Create(ctx context.Context, ownerId string, draft Transaction) (Transaction, error) {
	if err := s.takeFailure(); err != nil {
		return Transaction{}, err
	}
	s.nextId++
	draft.ID = "tx-" + strconv.Itoa(s.nextId)
	draft.CreatedAt = time.Now().UTC()
	s.data[ownerId] = append(s.data[ownerId], draft)
	return s.join(draft), nil
}

func (s *StubTransactionRepo) Update(ctx context.Context, ownerId string, id string, patch Transaction) (Transaction, bool, error) {
	if err := s.takeFailure(); err != nil {
		return Transaction{}, false, err
	}
	for i, t := range s.data[ownerId] {
		if t.ID == id {
			patch.ID = id
			patch.CreatedAt = t.CreatedAt
			s.data[ownerId][i] = patch
			return s.join(patch), true, nil
		}
	}
	return Transaction{}, false, nil
}

func (s *StubTransactionRepo) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	if err := s.takeFailure(); err != nil {
		return false, err
	}
	before := len(s.data[ownerId])
	s.data[ownerId] = slices.DeleteFunc(s.data[ownerId], func(t Transaction) bool { return t.ID == id })
	return len(s.data[ownerId]) < before, nil
}

func (s *StubTransactionRepo) Cleanup() {
	s.data = map[string][]Transaction{}
	s.categoryNames = map[string]string{}
	s.failNext = nil
}
