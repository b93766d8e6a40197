package budget

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ErrNotFound = errors.New("budget not found")

type Snapshot struct {
	Items     []Budget
	Loading   bool
	LastError string
}

// Store is the single source of truth for a user's budgets, reconciled
// against the gateway on every successful mutation.
type Store struct {
	repo Repo

	mu       sync.Mutex
	byOwner  map[string]*ownerState
	inFlight map[string]struct{}
}

type ownerState struct {
	items   []Budget
	loading bool
	lastErr error
}

func NewStore(repo Repo) *Store {
	return &Store{
		repo:     repo,
		byOwner:  make(map[string]*ownerState),
		inFlight: make(map[string]struct{}),
	}
}

func (s *Store) FetchAll(ctx context.Context) ([]Budget, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.beginOp(ownerId)
	items, err := s.repo.ListByOwner(ctx, ownerId)
	if err != nil {
		return nil, s.settle(ownerId, &rest.GatewayError{Op: "fetch budgets", Err: err})
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = items
	st.loading = false
	st.lastErr = nil
	out := slices.Clone(st.items)
	s.mu.Unlock()
	return out, nil
}

func (s *Store) Add(ctx context.Context, draft Budget) (Budget, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return Budget{}, err
	}

	s.beginOp(ownerId)
	created, err := s.repo.Create(ctx, ownerId, draft)
	if err != nil {
		return Budget{}, s.settle(ownerId, &rest.GatewayError{Op: "add budget", Err: err})
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = append(st.items, created)
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Budget) (Budget, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := patch.Validate(); err != nil {
		return Budget{}, err
	}
	if err := s.acquire(id); err != nil {
		return Budget{}, err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	updated, found, err := s.repo.Update(ctx, ownerId, id, patch)
	if err != nil {
		return Budget{}, s.settle(ownerId, &rest.GatewayError{Op: "update budget", Err: err})
	}
	if !found {
		log.Warnf("budget not updated, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return Budget{}, s.settle(ownerId, ErrNotFound)
	}

	s.mu.Lock()
	st := s.state(ownerId)
	for i := range st.items {
		if st.items[i].ID == id {
			st.items[i] = updated
			break
		}
	}
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.acquire(id); err != nil {
		return err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	deleted, err := s.repo.Delete(ctx, ownerId, id)
	if err != nil {
		return s.settle(ownerId, &rest.GatewayError{Op: "delete budget", Err: err})
	}
	if !deleted {
		log.Warnf("budget not deleted, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return s.settle(ownerId, ErrNotFound)
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = slices.DeleteFunc(st.items, func(b Budget) bool { return b.ID == id })
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(ownerId)
	snap := Snapshot{
		Items:   slices.Clone(st.items),
		Loading: st.loading,
	}
	if st.lastErr != nil {
		snap.LastError = st.lastErr.Error()
	}
	return snap, nil
}

func (s *Store) state(ownerId string) *ownerState {
	st, ok := s.byOwner[ownerId]
	if !ok {
		st = &ownerState{}
		s.byOwner[ownerId] = st
	}
	return st
}

func (s *Store) beginOp(ownerId string) {
	s.mu.Lock()
	s.state(ownerId).loading = true
	s.mu.Unlock()
}

func (s *Store) settle(ownerId string, err error) error {
	s.mu.Lock()
	st := s.state(ownerId)
	st.loading = false
	st.lastErr = err
	s.mu.Unlock()
	return err
}

func (s *Store) acquire(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return rest.ErrMutationInFlight
	}
	s.inFlight[id] = struct{}{}
	return nil
}

func (s *Store) release(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
