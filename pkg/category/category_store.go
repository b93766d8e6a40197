package category

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

var ErrNotFound = errors.New("category not found")

// Snapshot is a copy of one owner's cached collection plus the loading and
// last-error pair the UI polls.
type Snapshot struct {
	Items     []Category
	Loading   bool
	LastError string
}

// Store is the single source of truth for a user's categories. It keeps an
// in-memory collection reconciled against the gateway: every successful
// mutation applies the record the gateway returned, never the local draft.
type Store struct {
	repo Repo
	bus  *event_bus.EventBus

	mu       sync.Mutex
	byOwner  map[string]*ownerState
	inFlight map[string]struct{}
}

type ownerState struct {
	items   []Category
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

// FetchAll replaces the cached collection with the gateway's. On failure the
// stale collection stays available and only the error is recorded.
func (s *Store) FetchAll(ctx context.Context) ([]Category, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.beginOp(ownerId)
	items, err := s.repo.ListByOwner(ctx, ownerId)
	if err != nil {
		return nil, s.settle(ownerId, &rest.GatewayError{Op: "fetch categories", Err: err})
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

// Add validates the draft, creates it through the gateway and appends the
// returned record to the cached collection.
func (s *Store) Add(ctx context.Context, draft Category) (Category, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return Category{}, err
	}

	s.beginOp(ownerId)
	created, err := s.repo.Create(ctx, ownerId, draft)
	if err != nil {
		return Category{}, s.settle(ownerId, &rest.GatewayError{Op: "add category", Err: err})
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = append(st.items, created)
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()
	return created, nil
}

// Update replaces the cached element matching id with the gateway's record.
func (s *Store) Update(ctx context.Context, id string, patch Category) (Category, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := patch.Validate(); err != nil {
		return Category{}, err
	}
	if err := s.acquire(id); err != nil {
		return Category{}, err
	}
	defer s.release(id)

	s.beginOp(ownerId)
	updated, found, err := s.repo.Update(ctx, ownerId, id, patch)
	if err != nil {
		return Category{}, s.settle(ownerId, &rest.GatewayError{Op: "update category", Err: err})
	}
	if !found {
		log.Warnf("category not updated, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return Category{}, s.settle(ownerId, ErrNotFound)
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

// Delete removes the record from the gateway and the cache and announces the
// deletion on the bus so dependents can drop their joined copies of it.
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
		return s.settle(ownerId, &rest.GatewayError{Op: "delete category", Err: err})
	}
	if !deleted {
		log.Warnf("category not deleted, probably because it does not exist (%s) or the user (%s) is not the owner", id, ownerId)
		return s.settle(ownerId, ErrNotFound)
	}

	s.mu.Lock()
	st := s.state(ownerId)
	st.items = slices.DeleteFunc(st.items, func(c Category) bool { return c.ID == id })
	st.loading = false
	st.lastErr = nil
	s.mu.Unlock()

	if s.bus != nil {
		if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventTypeCategoryDeleted, event_bus.CategoryDeleted{
			OwnerID:    ownerId,
			CategoryID: id,
		})); err != nil {
			log.Errorf("failed to publish category deletion: %v", err)
		}
	}
	return nil
}

// Snapshot returns a copy of the owner's cached state without calling the
// gateway.
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

// settle records a failed operation: loading resets, the error is kept for
// polling, the collection stays as it was.
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
