// Package store holds the transactional boundary shared by the in-memory
// application, sett and revocation stores.
package store

import (
	"context"
	"sync"
)

// Snapshotter is implemented by memory stores that can take part in a
// transaction. Snapshot copies the store's state and returns a func that
// restores it.
type Snapshotter interface {
	Snapshot() (restore func())
}

type txMarker struct{}

// MemoryTx gives the in-memory stores the all-or-nothing behaviour the
// PostgreSQL stores get from a SQL transaction. Transactions are serialized.
// Store calls made outside a transaction wait for any running one, so readers
// never observe a half-applied change.
type MemoryTx struct {
	mu           sync.Mutex
	participants []Snapshotter
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{}
}

// Register adds a store whose state is rolled back when a transaction fails.
func (t *MemoryTx) Register(s Snapshotter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.participants = append(t.participants, s)
}

// RunInTx runs fn with a context marked as transactional. If fn returns an
// error every registered store is restored to its state before fn ran.
// Nested calls join the outer transaction.
func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), 0, len(t.participants))
	for _, p := range t.participants {
		restores = append(restores, p.Snapshot())
	}

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// Guard is called by memory stores at the start of every operation. Outside a
// transaction it blocks until no transaction is running; the returned func
// releases it. Inside a transaction it is a no-op.
func (t *MemoryTx) Guard(ctx context.Context) (release func()) {
	if t == nil || InTx(ctx) {
		return func() {}
	}
	t.mu.Lock()
	return t.mu.Unlock
}

// InTx reports whether ctx was produced by MemoryTx.RunInTx.
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txMarker{}).(bool)
	return v
}
