package chatbot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultContextTTL is how long a conversation context stays usable.
const DefaultContextTTL = 5 * time.Minute

// ContextStore remembers the last turn per user. Get reports absent once the entry is
// older than the TTL and deletes it.
type ContextStore interface {
	Save(ctx context.Context, userID string, c models.ConversationContext) error
	Get(ctx context.Context, userID string) (*models.ConversationContext, bool, error)
}

// MemoryContextStore is the single-instance ContextStore.
type MemoryContextStore struct {
	mu      sync.RWMutex
	entries map[string]models.ConversationContext
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryContextStore(ttl time.Duration, clock func() time.Time) *MemoryContextStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &MemoryContextStore{
		entries: make(map[string]models.ConversationContext),
		ttl:     ttl,
		now:     clock,
	}
}

func (s *MemoryContextStore) Save(_ context.Context, userID string, c models.ConversationContext) error {
	if userID == "" {
		return nil
	}
	c.Timestamp = s.now()
	s.mu.Lock()
	s.entries[userID] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryContextStore) Get(_ context.Context, userID string) (*models.ConversationContext, bool, error) {
	if userID == "" {
		return nil, false, nil
	}

	s.mu.RLock()
	c, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().Sub(c.Timestamp) < s.ttl {
		return &c, true, nil
	}

	s.mu.Lock()
	// a concurrent Save may have refreshed the entry
	if cur, ok := s.entries[userID]; ok && cur.Timestamp.Equal(c.Timestamp) {
		delete(s.entries, userID)
	}
	s.mu.Unlock()
	return nil, false, nil
}

// Len is the number of stored entries, stale ones included.
func (s *MemoryContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

const contextKeyPrefix = "chat:context:"

// RedisContextStore shares contexts across instances. The age check happens on read
// like the memory store; the key expiry only reclaims entries nobody reads again.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration, clock func() time.Time) *RedisContextStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &RedisContextStore{client: client, ttl: ttl, now: clock}
}

func (s *RedisContextStore) Save(ctx context.Context, userID string, c models.ConversationContext) error {
	if userID == "" {
		return nil
	}
	c.Timestamp = s.now()
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.NewContextStoreFailedError(err)
	}
	if err := s.client.Set(ctx, contextKeyPrefix+userID, raw, 2*s.ttl).Err(); err != nil {
		return errors.NewContextStoreFailedError(err)
	}
	return nil
}

func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.ConversationContext, bool, error) {
	if userID == "" {
		return nil, false, nil
	}
	key := contextKeyPrefix + userID

	raw, err := s.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewContextStoreFailedError(err)
	}

	var c models.ConversationContext
	if err := json.Unmarshal(raw, &c); err != nil || s.now().Sub(c.Timestamp) >= s.ttl {
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			return nil, false, errors.NewContextStoreFailedError(delErr)
		}
		return nil, false, nil
	}
	return &c, true, nil
}
