package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

// MemoryStore keeps looks and placements in process memory.
// Safe for concurrent use; the reconcile engine issues updates and deletes
// from multiple goroutines.
type MemoryStore struct {
	mu         sync.RWMutex
	looks      map[string]Look
	placements map[string]reconcile.Record // record id -> record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		looks:      make(map[string]Look),
		placements: make(map[string]reconcile.Record),
	}
}

// CreateLook stores a new look, assigning an id if none is set.
func (s *MemoryStore) CreateLook(ctx context.Context, look *Look) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if look.ID == "" {
		look.ID = uuid.NewString()
	}
	now := time.Now()
	look.CreatedAt = now
	look.UpdatedAt = now
	s.looks[look.ID] = *look
	return nil
}

// GetLook retrieves a look by id.
func (s *MemoryStore) GetLook(ctx context.Context, id string) (*Look, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	look, ok := s.looks[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	return &look, nil
}

// ListLooks returns a user's looks, most recently updated first.
func (s *MemoryStore) ListLooks(ctx context.Context, userID string) ([]Look, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Look
	for _, look := range s.looks {
		if look.UserID == userID {
			out = append(out, look)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// DeleteLook removes a look and its placement records.
func (s *MemoryStore) DeleteLook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.looks[id]; !ok {
		return errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	delete(s.looks, id)
	for recordID, r := range s.placements {
		if r.LookID == id {
			delete(s.placements, recordID)
		}
	}
	return nil
}

// UpdateLookComposite stores the rendered composite on a look.
func (s *MemoryStore) UpdateLookComposite(ctx context.Context, id, dataURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	look, ok := s.looks[id]
	if !ok {
		return errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	look.CompositeImage = dataURI
	look.UpdatedAt = time.Now()
	s.looks[id] = look
	return nil
}

// CreatePlacements creates all records in one batch with assigned ids.
func (s *MemoryStore) CreatePlacements(ctx context.Context, lookID string, creates []reconcile.Create) ([]reconcile.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]reconcile.Record, 0, len(creates))
	for _, c := range creates {
		r := reconcile.Record{
			ID:        uuid.NewString(),
			LookID:    lookID,
			ItemID:    c.ItemID,
			ItemType:  c.ItemType,
			SortOrder: c.SortOrder,
			Pos:       c.Pos,
			Scale:     c.Scale,
		}
		s.placements[r.ID] = r
		records = append(records, r)
	}
	return records, nil
}

// UpdatePlacement overwrites position and scale on one record.
func (s *MemoryStore) UpdatePlacement(ctx context.Context, recordID string, upd reconcile.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.placements[recordID]
	if !ok {
		return errors.New(errors.ErrCodeRecordNotFound, "placement %s not found", recordID)
	}
	r.Pos = upd.Pos
	r.Scale = upd.Scale
	s.placements[recordID] = r
	return nil
}

// DeletePlacement removes one record. Absent records are not an error.
func (s *MemoryStore) DeletePlacement(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.placements, recordID)
	return nil
}

// ListPlacements returns a look's records ordered by SortOrder.
func (s *MemoryStore) ListPlacements(ctx context.Context, lookID string) ([]reconcile.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []reconcile.Record
	for _, r := range s.placements {
		if r.LookID == lookID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
