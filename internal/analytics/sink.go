// Package analytics records chat interactions. Writes are best effort: a failed sink
// is counted and reported to the caller, which logs and carries on.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/metrics"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Sink names used in metrics and errors.
const (
	SinkDocStore      = "docstore"
	SinkElasticsearch = "elasticsearch"
)

type Sink interface {
	Log(ctx context.Context, in models.Interaction) error
}

type clientContextKey struct{}

// ClientContext is what the HTTP layer knows about the caller's client.
type ClientContext struct {
	UserAgent string
	URL       string
}

// WithClientContext attaches cc to ctx so sinks can stamp it on interactions.
func WithClientContext(ctx context.Context, cc ClientContext) context.Context {
	return context.WithValue(ctx, clientContextKey{}, cc)
}

func ClientContextFrom(ctx context.Context) (ClientContext, bool) {
	cc, ok := ctx.Value(clientContextKey{}).(ClientContext)
	return cc, ok
}

// stamp fills the client fields from ctx and defaults the timestamp.
func stamp(ctx context.Context, in models.Interaction) models.Interaction {
	if cc, ok := ClientContextFrom(ctx); ok {
		if in.UserAgent == "" {
			in.UserAgent = cc.UserAgent
		}
		if in.URL == "" {
			in.URL = cc.URL
		}
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	in.Timestamp = in.Timestamp.UTC()
	return in
}

func failed(sink string, err error) error {
	metrics.AnalyticsFailures.WithLabelValues(sink).Inc()
	return errors.NewAnalyticsWriteFailedError(sink, err)
}

// DocStoreSink appends interactions to the views collection.
type DocStoreSink struct {
	store docstore.Store
}

func NewDocStoreSink(store docstore.Store) *DocStoreSink {
	return &DocStoreSink{store: store}
}

func (s *DocStoreSink) Log(ctx context.Context, in models.Interaction) error {
	in = stamp(ctx, in)
	data, err := plainData(in.Data)
	if err != nil {
		return failed(SinkDocStore, err)
	}
	in.Data = data

	if _, err := s.store.Add(ctx, docstore.CollectionViews, in.Document()); err != nil {
		return failed(SinkDocStore, err)
	}
	return nil
}

// plainData flattens typed payload values into maps and slices every backend can encode.
func plainData(data map[string]interface{}) (map[string]interface{}, error) {
	if len(data) == 0 {
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode interaction data: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode interaction data: %w", err)
	}
	return out, nil
}

// ElasticsearchSink indexes interactions as JSON documents.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Log(ctx context.Context, in models.Interaction) error {
	body, err := json.Marshal(stamp(ctx, in))
	if err != nil {
		return failed(SinkElasticsearch, err)
	}

	req := esapi.IndexRequest{
		Index: s.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return failed(SinkElasticsearch, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return failed(SinkElasticsearch, fmt.Errorf("index %s: %s", s.index, res.Status()))
	}
	return nil
}

// MultiSink fans an interaction out to every sink and joins their failures.
type MultiSink struct {
	sinks  []Sink
	logger logger.Logger
}

func NewMultiSink(log logger.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger.Component(log, "analytics")}
}

func (m *MultiSink) Len() int {
	return len(m.sinks)
}

func (m *MultiSink) Log(ctx context.Context, in models.Interaction) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Log(ctx, in); err != nil {
			m.logger.Debug("analytics sink failed", map[string]interface{}{
				"action": in.Action,
				"error":  err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
