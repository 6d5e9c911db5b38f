package chatbot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sampleContext() models.ConversationContext {
	return models.ConversationContext{LastIntent: models.IntentJobSearch, Filters: models.Filters{Location: "Pune"}}
}

func exerciseExpiry(t *testing.T, store ContextStore, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", sampleContext()))
	clock.Advance(4 * time.Minute)

	first, ok, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	second, ok, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, "Pune", second.Filters.Location)

	clock.Advance(time.Minute)
	_, ok, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "entry is stale at exactly five minutes")

	_, ok, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryContextStore_Expiry(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryContextStore(0, clock.Now)

	exerciseExpiry(t, store, clock)
	assert.Equal(t, 0, store.Len(), "stale entry is deleted on read")
}

func TestMemoryContextStore_SaveRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryContextStore(0, clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", sampleContext()))
	clock.Advance(4 * time.Minute)
	require.NoError(t, store.Save(ctx, "u1", sampleContext()))
	clock.Advance(4 * time.Minute)

	got, ok, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, clock.now.Add(-4*time.Minute), got.Timestamp)
}

func TestMemoryContextStore_AnonymousUser(t *testing.T) {
	store := NewMemoryContextStore(0, nil)
	require.NoError(t, store.Save(context.Background(), "", sampleContext()))
	_, ok, err := store.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestRedisContextStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clock := newFakeClock()
	store := NewRedisContextStore(client, 0, clock.Now)

	exerciseExpiry(t, store, clock)
	assert.False(t, mr.Exists(contextKeyPrefix+"u1"))
}

func TestRedisContextStore_KeyExpiryBackstop(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisContextStore(client, time.Minute, nil)

	require.NoError(t, store.Save(context.Background(), "u1", sampleContext()))
	assert.Equal(t, 2*time.Minute, mr.TTL(contextKeyPrefix+"u1"))
}

func TestRedisContextStore_Failure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisContextStore(client, 0, nil)

	mock.ExpectGet(contextKeyPrefix + "u1").SetErr(fmt.Errorf("connection refused"))

	_, ok, err := store.Get(context.Background(), "u1")
	assert.False(t, ok)
	assert.True(t, errors.HasCode(err, errors.ErrCodeContextStoreFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
