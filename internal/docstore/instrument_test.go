package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowStore struct {
	*MemoryStore
}

func (s slowStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestInstrumented_PassesThrough(t *testing.T) {
	mem := NewMemoryStore()
	mem.Seed(CollectionUsers, "u1", map[string]interface{}{"name": "Ana"})
	store := Instrument(mem, "memory", time.Second)

	doc, err := store.Get(context.Background(), CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Data["name"])

	_, err = store.Get(context.Background(), CollectionUsers, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInstrumented_BoundsEachCall(t *testing.T) {
	store := Instrument(slowStore{NewMemoryStore()}, "memory", 20*time.Millisecond)

	_, err := store.Get(context.Background(), CollectionUsers, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
