package docstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MemoryStore keeps collections in process memory. It follows Firestore's filter and
// ordering rules so it can stand in for it in development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	newID       func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		newID:       func() string { return uuid.New().String() },
	}
}

// WithIDGenerator replaces the uuid generator, for deterministic tests.
func (s *MemoryStore) WithIDGenerator(gen func() string) *MemoryStore {
	s.newID = gen
	return s
}

// Seed stores data under collection/id, replacing any existing document.
func (s *MemoryStore) Seed(collection, id string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, data)
}

// LoadSeedFile reads a YAML file shaped as collection -> id -> fields.
func (s *MemoryStore) LoadSeedFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seed map[string]map[string]map[string]interface{}
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for collection, docs := range seed {
		for id, data := range docs {
			s.put(collection, id, data)
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) put(collection, id string, data map[string]interface{}) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}
	docs[id] = copyMap(data)
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for id, data := range s.collections[q.Collection] {
		if !matchesAll(data, q) {
			continue
		}
		out = append(out, Document{ID: id, Data: copyMap(data)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Orders {
			a, _ := lookup(out[i].Data, o.Field)
			b, _ := lookup(out[j].Data, o.Field)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if o.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// matchesAll applies every filter; documents missing an ordered field are excluded.
func matchesAll(data map[string]interface{}, q Query) bool {
	for _, f := range q.Filters {
		if !matches(data, f) {
			return false
		}
	}
	for _, o := range q.Orders {
		if _, ok := lookup(data, o.Field); !ok {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.put(collection, id, data)
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, data)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range copyMap(fields) {
		data[k] = v
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case time.Time:
		return t
	default:
		return v
	}
}
