package goal

import (
	"context"
	"slices"
	"strconv"
	"time"
)

type StubGoalRepo struct {
	nextId   int
	data     map[string][]Goal
	failNext error
}

func NewStubGoalRepo() *StubGoalRepo {
	return &StubGoalRepo{data: map[string][]Goal{}}
}

func (s *StubGoalRepo) FailNext(err error) {
	s.failNext = err
}

func (s *StubGoalRepo) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *StubGoalRepo) ListByOwner(ctx context.Context, ownerId string) ([]Goal, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return slices.Clone(s.data[ownerId]), nil
}

func (s *StubGoalRepo) Create(ctx context.Context, ownerId string, draft Goal) (Goal, error) {
	if err := s.takeFailure(); err != nil {
		return Goal{}, err
	}
	s.nextId++
	draft.ID = "goal-" + strconv.Itoa(s.nextId)
	draft.CreatedAt = time.Now().UTC()
	s.data[ownerId] = append(s.data[ownerId], draft)
	return draft, nil
}

func (s *StubGoalRepo) Update(ctx context.Context, ownerId string, id string, patch Goal) (Goal, bool, error) {
	if err := s.takeFailure(); err != nil {
		return Goal{}, false, err
	}
	for i, g := range s.data[ownerId] {
		if g.ID == id {
			patch.ID = id
			patch.CreatedAt = g.CreatedAt
			s.data[ownerId][i] = patch
			return patch, true, nil
		}
	}
	return Goal{}, false, nil
}

func (s *StubGoalRepo) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	if err := s.takeFailure(); err != nil {
		return false, err
	}
	before := len(s.data[ownerId])
	s.data[ownerId] = slices.DeleteFunc(s.data[ownerId], func(g Goal) bool { return g.ID == id })
	return len(s.data[ownerId]) < before, nil
}

func (s *StubGoalRepo) FindByID(ctx context.Context, ownerId string, id string) (Goal, bool, error) {
	if err := s.takeFailure(); err != nil {
		return Goal{}, false, err
	}
	for _, g := range s.data[ownerId] {
		if g.ID == id {
			return g, true, nil
		}
	}
	return Goal{}, false, nil
}

func (s *StubGoalRepo) Cleanup() {
	s.data = map[string][]Goal{}
	s.failNext = nil
}
