// Package repository translates logical filters into document store reads and maps
// the returned documents onto canonical models.
package repository

import (
	"context"
	stderrors "errors"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/docstore"
)

// Default result caps.
const (
	DefaultProfessionalLimit = 50
	DefaultCategoryLimit     = 200
	DefaultDoctorLimit       = 50
	DefaultJobLimit          = 10
	DefaultBookingLimit      = 20
	DefaultConsultationLimit = 10
	DefaultNotificationLimit = 10
	DefaultSearchAllLimit    = 5
)

type Options struct {
	CategoryLimit int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Repository struct {
	store         docstore.Store
	types         TypeCache
	categoryLimit int
	now           func() time.Time
	logger        logger.Logger
}

// New builds a Repository. types may be nil, in which case professional types are
// read from the store on every decoration.
func New(store docstore.Store, types TypeCache, opts Options, log logger.Logger) *Repository {
	r := &Repository{
		store:         store,
		types:         types,
		categoryLimit: opts.CategoryLimit,
		now:           opts.Clock,
		logger:        logger.Component(log, "repository"),
	}
	if r.categoryLimit <= 0 {
		r.categoryLimit = DefaultCategoryLimit
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// query runs q and wraps any failure once as STORE_READ_FAILED.
func (r *Repository) query(ctx context.Context, op string, q docstore.Query) ([]docstore.Document, error) {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, r.readFailed(op, q.Collection, err)
	}
	return docs, nil
}

// get returns (nil, nil) when the document does not exist.
func (r *Repository) get(ctx context.Context, op, collection, id string) (*docstore.Document, error) {
	doc, err := r.store.Get(ctx, collection, id)
	if stderrors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.readFailed(op, collection, err)
	}
	return doc, nil
}

func (r *Repository) readFailed(op, collection string, err error) error {
	r.logger.Error("store read failed", map[string]interface{}{
		"operation":  op,
		"collection": collection,
		"error":      err.Error(),
	})
	if stderrors.Is(err, docstore.ErrUnsupportedFilter) {
		return errors.NewInvalidQueryOperatorError(collection, err)
	}
	return errors.NewStoreReadFailedError(collection, err)
}

func (r *Repository) writeFailed(op, collection string, err error) error {
	r.logger.Error("store write failed", map[string]interface{}{
		"operation":  op,
		"collection": collection,
		"error":      err.Error(),
	})
	return errors.NewStoreWriteFailedError(collection, err)
}

// Ping checks the underlying store.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return errors.NewStoreUnavailableError("docstore", err)
	}
	return nil
}
