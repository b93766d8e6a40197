package goal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/event_bus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ErrNotFound = errors.New("goal not found")

type Snapshot struct {
	Items     []Goal
	Loading   bool
	LastError string
}

// Store is the single source of truth for a user's savings goals.
type Store struct {
	repo Repo
	bus  *event_bus.EventBus

	mu       sync.Mutex
	byOwner  map[string]*ownerState
	inFlight map[string]struct{}
}

type ownerState struct {
	items   []Goal
	loading bool
	lastErr error
}

func NewStore(repo Repo, bus *event_bus.EventBus) *Store {
	return &Store{
		repo:     repo,
		bus:      bus,
		byOwner:  make(map[string]*ownerState),
		inFlight: make(map[string]struct{}),
	}
}

func (s *Store) FetchAll(ctx context.Context) ([]Goal, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.beginOp(ownerId)
	items, err := s.repo.ListByOwner(ctx, ownerId)
	if err != nil {
		return nil, s.settle(ownerId, &rest.GatewayError{Op: "fetch goals", Err: err})
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

func (s *Store) Add(ctx context.Context, draft Goal) (Goal, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return Goal{}, err
	}

	s.beginOp(ownerId)
	created, err := s.repo.Create(ctx, ownerId, draft)
	if err != nil {
		return Goal{}, s.settle(ownerId, &rest.GatewayError{Op: "add goal", Err: err})
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = append(st.items, created)
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Goal) (Goal, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := patch.Validate(); err != nil {
		return Goal{}, err
	}
	if err := s.acquire(id); err != nil {
		return Goal{}, err
	}
	defer s.release(id)

	return s.applyUpdate(ctx, ownerId, id, patch)
}

// AddFunds raises the goal's current amount by the given value, clamped at
// the target amount. The fresh server copy is read first so the clamp works
// from the authoritative balance, not the cached one.
func (s *Store) AddFunds(ctx context.Context, id string, amount decimal.Decimal) (Goal, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !amount.IsPositive() {
		return Goal{}, &rest.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if err := s.acquire(id); err != nil {
		return Goal{}, err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	current, found, err := s.repo.FindByID(ctx, ownerId, id)
	if err != nil {
		return Goal{}, s.settle(ownerId, &rest.GatewayError{Op: "add goal funds", Err: err})
	}
	if !found {
		return Goal{}, s.settle(ownerId, ErrNotFound)
	}

	wasAchieved := current.Achieved()
	patch := current
	patch.CurrentAmount = decimal.Min(current.CurrentAmount.Add(amount), current.TargetAmount)

	updated, err := s.applyUpdate(ctx, ownerId, id, patch)
	if err != nil {
		return Goal{}, err
	}

	if !wasAchieved && updated.Achieved() && s.bus != nil {
		if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventTypeGoalAchieved, event_bus.GoalAchieved{
			OwnerID: ownerId,
			GoalID:  updated.ID,
			Name:    updated.Name,
		})); err != nil {
			log.Errorf("failed to publish goal achievement: %v", err)
		}
	}
	return updated, nil
}

func (s *Store) applyUpdate(ctx context.Context, ownerId, id string, patch Goal) (Goal, error) {
	s.beginOp(ownerId)
	updated, found, err := s.repo.Update(ctx, ownerId, id, patch)
	if err != nil {
		return Goal{}, s.settle(ownerId, &rest.GatewayError{Op: "update goal", Err: err})
	}
	if !found {
		log.Warnf("goal not updated, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return Goal{}, s.settle(ownerId, ErrNotFound)
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
		return s.settle(ownerId, &rest.GatewayError{Op: "delete goal", Err: err})
	}
	if !deleted {
		log.Warnf("goal not deleted, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return s.settle(ownerId, ErrNotFound)
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = slices.DeleteFunc(st.items, func(g Goal) bool { return g.ID == id })
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
