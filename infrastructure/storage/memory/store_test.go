package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

func record(id string, createdAt time.Time) domain.SessionRecord {
	return domain.SessionRecord{
		ID:        id,
		Position:  domain.Position{ID: "pos-" + id, Statement: "statement " + id},
		CreatedAt: createdAt,
	}
}

func TestSessionStore_SaveGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	rec := record("s1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Save is an upsert.
	rec.Iterations = 2
	require.NoError(t, store.Save(ctx, rec))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Iterations)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_ListNewestFirst(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := range 5 {
		rec := record(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Save(ctx, rec))
	}

	records, err := store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "s4", records[0].ID)
	assert.Equal(t, "s3", records[1].ID)
	assert.Equal(t, "s2", records[2].ID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
