package sett

import (
	"context"
	"sort"
	"sync"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
)

// InMemory keeps setts keyed by their store-assigned ID.
type InMemory struct {
	mu     sync.RWMutex
	setts  map[int64]models.Sett
	nextID int64
	tx     *store.MemoryTx
}

type Option func(*InMemory)

func WithMemoryTx(tx *store.MemoryTx) Option {
	return func(s *InMemory) {
		s.tx = tx
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{setts: make(map[int64]models.Sett)}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx != nil {
		s.tx.Register(s)
	}
	return s
}

// Create assigns sett an ID and stores a copy.
func (s *InMemory) Create(ctx context.Context, sett *models.Sett) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sett.ID = s.nextID
	s.setts[sett.ID] = *sett
	return nil
}

func (s *InMemory) DeleteByApplication(ctx context.Context, applicationID models.ApplicationID) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sett := range s.setts {
		if sett.ApplicationID == applicationID {
			delete(s.setts, id)
		}
	}
	return nil
}

// ListByApplications groups the setts of the given applications, each group
// ordered by ID. Applications without setts are absent from the result.
func (s *InMemory) ListByApplications(ctx context.Context, ids []models.ApplicationID) (map[models.ApplicationID][]*models.Sett, error) {
	defer s.tx.Guard(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[models.ApplicationID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	out := make(map[models.ApplicationID][]*models.Sett)
	for _, sett := range s.setts {
		if _, ok := wanted[sett.ApplicationID]; ok {
			c := sett
			out[sett.ApplicationID] = append(out[sett.ApplicationID], &c)
		}
	}
	for _, group := range out {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return out, nil
}

func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[int64]models.Sett, len(s.setts))
	for id, sett := range s.setts {
		saved[id] = sett
	}
	nextID := s.nextID
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.setts = saved
		s.nextID = nextID
		s.mu.Unlock()
	}
}
