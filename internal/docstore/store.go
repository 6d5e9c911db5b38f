// Package docstore is the document database boundary. Callers express reads with the
// primitives every supported backend shares: equality, range, array containment,
// membership, ordering and limit.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// Collection names.
const (
	CollectionProfessionals     = "professionals"
	CollectionPlacements        = "placements"
	CollectionBookings          = "bookings"
	CollectionConsultations     = "consultations"
	CollectionUsers             = "users"
	CollectionSpecializations   = "specializations"
	CollectionProfessionalTypes = "professional_types"
	CollectionAvailabilitySlots = "availabilitySlots"
	CollectionNotifications     = "notifications"
	CollectionViews             = "views"
)

var (
	ErrNotFound          = errors.New("DOCUMENT_NOT_FOUND")
	ErrUnsupportedFilter = errors.New("UNSUPPORTED_FILTER")
)

// Op is a filter operator, spelled the way Firestore spells it.
type Op string

const (
	OpEqual         Op = "=="
	OpLess          Op = "<"
	OpLessEqual     Op = "<="
	OpGreater       Op = ">"
	OpGreaterEqual  Op = ">="
	OpArrayContains Op = "array-contains"
	OpIn            Op = "in"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

type Order struct {
	Field     string
	Direction Direction
}

// Query is an immutable read description. Zero Limit means no limit.
type Query struct {
	Collection string
	Filters    []Filter
	Orders     []Order
	Limit      int
}

// From starts a query on collection.
func From(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field string, op Op, value interface{}) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, dir Direction) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Field: field, Direction: dir})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Validate rejects operators and values no backend can express.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: empty collection", ErrUnsupportedFilter)
	}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpArrayContains:
		case OpIn:
			if _, ok := f.Value.([]interface{}); !ok {
				return fmt.Errorf("%w: %s on %s needs a []interface{} value", ErrUnsupportedFilter, f.Op, f.Field)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedFilter, f.Op)
		}
	}
	return nil
}

// Document is a stored record tagged with its identifier.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Store is implemented by each backend.
type Store interface {
	Query(ctx context.Context, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Update merges fields into an existing document and fails with ErrNotFound otherwise.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Ping(ctx context.Context) error
	Close() error
}
