package category

import (
	"context"
	"slices"
	"strconv"
	"time"
)

// StubCategoryRepo is an in-memory gateway used by store and service tests.
// failNext makes the next call fail, to exercise stale-but-available paths.
type StubCategoryRepo struct {
	nextId   int
	data     map[string][]Category
	failNext error
}

func NewStubCategoryRepo() *StubCategoryRepo {
	return &StubCategoryRepo{data: map[string][]Category{}}
}

func (s *StubCategoryRepo) FailNext(err error) {
	s.failNext = err
}

func (s *StubCategoryRepo) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *StubCategoryRepo) ListByOwner(ctx context.Context, ownerId string) ([]Category, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return slices.Clone(s.data[ownerId]), nil
}

func (s *StubCategoryRepo) Create(ctx context.Context, ownerId string, draft Category) (Category, error) {
	if err := s.takeFailure(); err != nil {
		return Category{}, err
	}
	s.nextId++
	draft.ID = "cat-" + strconv.Itoa(s.nextId)
	draft.CreatedAt = time.Now().UTC()
	s.data[ownerId] = append(s.data[ownerId], draft)
	return draft, nil
}

func (s *StubCategoryRepo) Update(ctx context.Context, ownerId string, id string, patch Category) (Category, bool, error) {
	if err := s.takeFailure(); err != nil {
		return Category{}, false, err
	}
	for i, c := range s.data[ownerId] {
		if c.ID == id {
			patch.ID = id
			patch.CreatedAt = c.CreatedAt
			s.data[ownerId][i] = patch
			return patch, true, nil
		}
	}
	return Category{}, false, nil
}

func (s *StubCategoryRepo) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	if err := s.takeFailure(); err != nil {
		return false, err
	}
	before := len(s.data[ownerId])
	s.data[ownerId] = slices.DeleteFunc(s.data[ownerId], func(c Category) bool { return c.ID == id })
	return len(s.data[ownerId]) < before, nil
}

func (s *StubCategoryRepo) Cleanup() {
	s.data = map[string][]Category{}
	s.failNext = nil
}
