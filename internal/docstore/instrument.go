package docstore

import (
	"context"
	"errors"
	"time"

	"chat-assistant/internal/common/metrics"
)

// Instrumented records latency and failures for every call on the wrapped store.
// A positive timeout bounds each call.
type Instrumented struct {
	Store
	backend string
	timeout time.Duration
}

func Instrument(store Store, backend string, timeout time.Duration) *Instrumented {
	return &Instrumented{Store: store, backend: backend, timeout: timeout}
}

func (i *Instrumented) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, i.timeout)
}

func (i *Instrumented) observe(collection, operation string, start time.Time, err error) {
	metrics.StoreQueryDuration.WithLabelValues(i.backend, collection).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.StoreErrors.WithLabelValues(collection, operation).Inc()
	}
}

func (i *Instrumented) Query(ctx context.Context, q Query) ([]Document, error) {
	ctx, cancel := i.bound(ctx)
	defer cancel()
	start := time.Now()
	docs, err := i.Store.Query(ctx, q)
	i.observe(q.Collection, "query", start, err)
	return docs, err
}

func (i *Instrumented) Get(ctx context.Context, collection, id string) (*Document, error) {
	ctx, cancel := i.bound(ctx)
	defer cancel()
	start := time.Now()
	doc, err := i.Store.Get(ctx, collection, id)
	i.observe(collection, "get", start, err)
	return doc, err
}

func (i *Instrumented) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ctx, cancel := i.bound(ctx)
	defer cancel()
	start := time.Now()
	id, err := i.Store.Add(ctx, collection, data)
	i.observe(collection, "add", start, err)
	return id, err
}

func (i *Instrumented) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	ctx, cancel := i.bound(ctx)
	defer cancel()
	start := time.Now()
	err := i.Store.Set(ctx, collection, id, data)
	i.observe(collection, "set", start, err)
	return err
}

func (i *Instrumented) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	ctx, cancel := i.bound(ctx)
	defer cancel()
	start := time.Now()
	err := i.Store.Update(ctx, collection, id, fields)
	i.observe(collection, "update", start, err)
	return err
}
