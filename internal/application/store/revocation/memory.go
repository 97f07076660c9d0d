package revocation

import (
	"context"
	"sync"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
)

// InMemory is an insert-only revocation log.
type InMemory struct {
	mu          sync.RWMutex
	revocations []models.Revocation
	tx          *store.MemoryTx
}

type Option func(*InMemory)

func WithMemoryTx(tx *store.MemoryTx) Option {
	return func(s *InMemory) {
		s.tx = tx
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx != nil {
		s.tx.Register(s)
	}
	return s
}

func (s *InMemory) Create(ctx context.Context, r *models.Revocation) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = int64(len(s.revocations) + 1)
	s.revocations = append(s.revocations, *r)
	return nil
}

func (s *InMemory) ListByApplication(ctx context.Context, applicationID models.ApplicationID) ([]*models.Revocation, error) {
	defer s.tx.Guard(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Revocation
	for _, r := range s.revocations {
		if r.ApplicationID == applicationID {
			c := r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	n := len(s.revocations)
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.revocations = s.revocations[:n]
		s.mu.Unlock()
	}
}
