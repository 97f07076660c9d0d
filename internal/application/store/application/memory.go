package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
)

type record struct {
	app       *models.Application
	deletedAt *time.Time
}

// InMemory is an in-memory application store. Soft-deleted applications keep
// their identity so it is never handed out again.
type InMemory struct {
	mu   sync.RWMutex
	apps map[models.ApplicationID]record
	tx   *store.MemoryTx
}

type Option func(*InMemory)

// WithMemoryTx enrols the store in tx so its writes roll back with the
// transaction.
func WithMemoryTx(tx *store.MemoryTx) Option {
	return func(s *InMemory) {
		s.tx = tx
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{apps: make(map[models.ApplicationID]record)}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx != nil {
		s.tx.Register(s)
	}
	return s
}

// CreateIfIDAvailable stores app unless its identity is taken by a live or
// revoked application. The check and insert happen under one lock.
func (s *InMemory) CreateIfIDAvailable(ctx context.Context, app *models.Application) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.apps[app.ID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.apps[app.ID] = record{app: withoutSetts(app)}
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id models.ApplicationID) (*models.Application, error) {
	defer s.tx.Guard(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.apps[id]
	if !ok || rec.deletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	return rec.app.Clone(), nil
}

// FindForUpdate is FindByID; the memory transaction already serializes writers.
func (s *InMemory) FindForUpdate(ctx context.Context, id models.ApplicationID) (*models.Application, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemory) List(ctx context.Context) ([]*models.Application, error) {
	defer s.tx.Guard(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Application, 0, len(s.apps))
	for _, rec := range s.apps {
		if rec.deletedAt == nil {
			out = append(out, rec.app.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, app *models.Application) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[app.ID]
	if !ok || rec.deletedAt != nil {
		return sentinel.ErrNotFound
	}
	updated := withoutSetts(app)
	updated.CreatedAt = rec.app.CreatedAt
	s.apps[app.ID] = record{app: updated}
	return nil
}

func (s *InMemory) Patch(ctx context.Context, id models.ApplicationID, p models.Patch, now time.Time) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[id]
	if !ok || rec.deletedAt != nil {
		return sentinel.ErrNotFound
	}
	rec.app.ApplyPatch(p, now)
	return nil
}

// Delete soft-deletes the application.
func (s *InMemory) Delete(ctx context.Context, id models.ApplicationID, now time.Time) error {
	defer s.tx.Guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[id]
	if !ok || rec.deletedAt != nil {
		return sentinel.ErrNotFound
	}
	rec.deletedAt = &now
	s.apps[id] = rec
	return nil
}

func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[models.ApplicationID]record, len(s.apps))
	for id, rec := range s.apps {
		saved[id] = record{app: rec.app.Clone(), deletedAt: rec.deletedAt}
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.apps = saved
		s.mu.Unlock()
	}
}

func withoutSetts(app *models.Application) *models.Application {
	c := app.Clone()
	c.Setts = nil
	return c
}
