package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Snapshot() func() {
	c.mu.Lock()
	saved := c.n
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.n = saved
		c.mu.Unlock()
	}
}

func (c *counter) add(delta int) {
	c.mu.Lock()
	c.n += delta
	c.mu.Unlock()
}

func (c *counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestRunInTxRestoresOnError(t *testing.T) {
	tx := NewMemoryTx()
	c := &counter{n: 1}
	tx.Register(c)

	boom := errors.New("boom")
	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		c.add(10)
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.value())
}

func TestRunInTxKeepsChangesOnSuccess(t *testing.T) {
	tx := NewMemoryTx()
	c := &counter{}
	tx.Register(c)

	require.NoError(t, tx.RunInTx(context.Background(), func(ctx context.Context) error {
		c.add(2)
		return tx.RunInTx(ctx, func(context.Context) error {
			c.add(3)
			return nil
		})
	}))
	assert.Equal(t, 5, c.value())
}

func TestGuardWaitsForRunningTx(t *testing.T) {
	tx := NewMemoryTx()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = tx.RunInTx(context.Background(), func(ctx context.Context) error {
			tx.Guard(ctx)()
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	go func() {
		tx.Guard(context.Background())()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("guard returned while a transaction was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("guard never returned")
	}
}

func TestGuardOnNilTx(t *testing.T) {
	var tx *MemoryTx
	assert.NotPanics(t, func() { tx.Guard(context.Background())() })
}
