package transaction

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/event_bus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/user"
)

var ErrNotFound = errors.New("transaction not found")

type Snapshot struct {
	Items     []Transaction
	Loading   bool
	LastError string
}

// Store is the single source of truth for a user's transactions. The cached
// collection mirrors the gateway's date-descending order: FetchAll replaces
// it wholesale and Add prepends, so the newest record is always first.
type Store struct {
	repo Repo

	mu       sync.Mutex
	byOwner  map[string]*ownerState
	inFlight map[string]struct{}
}

type ownerState struct {
	items   []Transaction
	loading bool
	lastErr error
}

func NewStore(repo Repo, bus *event_bus.EventBus) *Store {
	s := &Store{
		repo:     repo,
		byOwner:  make(map[string]*ownerState),
		inFlight: make(map[string]struct{}),
	}
	if bus != nil {
		// When a category disappears, the gateway's join starts returning an
		// empty name for its transactions. Mirror that in the cache instead of
		// serving the stale joined name.
		event_bus.SubscribeTyped(bus, event_bus.EventTypeCategoryDeleted,
			func(e event_bus.EventT[event_bus.CategoryDeleted]) error {
				s.dropCategoryName(e.Data.OwnerID, e.Data.CategoryID)
				return nil
			})
	}
	return s
}

func (s *Store) FetchAll(ctx context.Context) ([]Transaction, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.beginOp(ownerId)
	items, err := s.repo.ListByOwner(ctx, ownerId)
	if err != nil {
		return nil, s.settle(ownerId, &rest.GatewayError{Op: "fetch transactions", Err: err})
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

func (s *Store) Add(ctx context.Context, draft Transaction) (Transaction, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return Transaction{}, err
	}

	s.beginOp(ownerId)
	created, err := s.repo.Create(ctx, ownerId, draft)
	if err != nil {
		return Transaction{}, s.settle(ownerId, &rest.GatewayError{Op: "add transaction", Err: err})
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = append([]Transaction{created}, st.items...)
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Transaction) (Transaction, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := patch.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := s.acquire(id); err != nil {
		return Transaction{}, err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	updated, found, err := s.repo.Update(ctx, ownerId, id, patch)
	if err != nil {
		return Transaction{}, s.settle(ownerId, &rest.GatewayError{Op: "update transaction", Err: err})
	}
	if !found {
		log.Warnf("transaction not updated, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return Transaction{}, s.settle(ownerId, ErrNotFound)
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

// Delete removes the record and returns the cached copy that was dropped,
// so the caller can clean up its proof image.
func (s *Store) Delete(ctx context.Context, id string) (Transaction, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.acquire(id); err != nil {
		return Transaction{}, err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	deleted, err := s.repo.Delete(ctx, ownerId, id)
	if err != nil {
		return Transaction{}, s.settle(ownerId, &rest.GatewayError{Op: "delete transaction", Err: err})
	}
	if !deleted {
		log.Warnf("transaction not deleted, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return Transaction{}, s.settle(ownerId, ErrNotFound)
	}

	s.mu.Lock()
	st := s.state(ownerId)
	var removed Transaction
	for i := range st.items {
		if st.items[i].ID == id {
			removed = st.items[i]
			st.items = slices.Delete(st.items, i, i+1)
			break
		}
	}
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return removed, nil
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

func (s *Store) dropCategoryName(ownerId, categoryId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byOwner[ownerId]
	if !ok {
		return
	}
	for i := range st.items {
		if st.items[i].CategoryID == categoryId {
			st.items[i].CategoryName = ""
		}
	}
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
