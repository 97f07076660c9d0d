package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
)

func TestInMemoryCreateAndList(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Now()

	first := models.NewRevocation(7, models.RevocationRequest{Reason: "breach"}, now)
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, models.NewRevocation(8, models.RevocationRequest{Reason: "other"}, now)))
	assert.Equal(t, int64(1), first.ID)

	list, err := s.ListByApplication(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "breach", list[0].Reason)

	none, err := s.ListByApplication(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryRollsBackWithTx(t *testing.T) {
	ctx := context.Background()
	memTx := store.NewMemoryTx()
	s := NewInMemory(WithMemoryTx(memTx))

	err := memTx.RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.Create(txCtx, models.NewRevocation(7, models.RevocationRequest{Reason: "breach"}, time.Now())))
		return errors.New("delete failed")
	})
	require.Error(t, err)

	list, err := s.ListByApplication(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}
