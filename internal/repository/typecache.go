package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

// TypeCache holds the professional_types collection between reads.
type TypeCache interface {
	Load(ctx context.Context) ([]models.ProfessionalType, bool)
	Store(ctx context.Context, types []models.ProfessionalType)
}

const typeCacheKey = "chat:professional_types"

// RedisTypeCache keeps the types as one JSON value shared across instances.
type RedisTypeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTypeCache(client *redis.Client, ttl time.Duration) *RedisTypeCache {
	return &RedisTypeCache{client: client, ttl: ttl}
}

func (c *RedisTypeCache) Load(ctx context.Context) ([]models.ProfessionalType, bool) {
	val, err := c.client.Get(ctx, typeCacheKey).Result()
	if err != nil {
		return nil, false
	}
	var types []models.ProfessionalType
	if err := json.Unmarshal([]byte(val), &types); err != nil {
		return nil, false
	}
	return types, true
}

func (c *RedisTypeCache) Store(ctx context.Context, types []models.ProfessionalType) {
	raw, err := json.Marshal(types)
	if err != nil {
		return
	}
	c.client.Set(ctx, typeCacheKey, raw, c.ttl)
}

// MemoryTypeCache is the single-instance TypeCache.
type MemoryTypeCache struct {
	mu       sync.RWMutex
	types    []models.ProfessionalType
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryTypeCache(ttl time.Duration) *MemoryTypeCache {
	return &MemoryTypeCache{ttl: ttl, now: time.Now}
}

func (c *MemoryTypeCache) Load(_ context.Context) ([]models.ProfessionalType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.types == nil || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	return append([]models.ProfessionalType(nil), c.types...), true
}

func (c *MemoryTypeCache) Store(_ context.Context, types []models.ProfessionalType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append([]models.ProfessionalType{}, types...)
	c.storedAt = c.now()
}

// GetProfessionalTypes serves from the cache when it holds a value.
func (r *Repository) GetProfessionalTypes(ctx context.Context) ([]models.ProfessionalType, error) {
	if r.types != nil {
		if types, ok := r.types.Load(ctx); ok {
			return types, nil
		}
	}
	return r.RefreshProfessionalTypes(ctx)
}

// RefreshProfessionalTypes reads the collection and repopulates the cache.
func (r *Repository) RefreshProfessionalTypes(ctx context.Context) ([]models.ProfessionalType, error) {
	docs, err := r.query(ctx, "getProfessionalTypes", docstore.From(docstore.CollectionProfessionalTypes))
	if err != nil {
		return nil, err
	}

	types := make([]models.ProfessionalType, 0, len(docs))
	for _, d := range docs {
		types = append(types, models.NormalizeProfessionalType(d.ID, d.Data))
	}
	if r.types != nil {
		r.types.Store(ctx, types)
	}
	return types, nil
}
