package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Schema expected by PostgresStore:
//
//	CREATE TABLE documents (
//	    collection text        NOT NULL,
//	    id         text        NOT NULL,
//	    data       jsonb       NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, id)
//	);
//
// Postgres orders mixed jsonb types differently from Firestore. Range filters are
// restricted to the value's own jsonb type so results match within a type.
type PostgresStore struct {
	db    *sqlx.DB
	table string
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func NewPostgresStore(db *sqlx.DB, table string) *PostgresStore {
	if table == "" {
		table = "documents"
	}
	return &PostgresStore{db: db, table: table}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	sqlText, args, err := s.buildQuery(q)
	if err != nil {
		return nil, err
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("postgres query %s: %w", q.Collection, err)
	}

	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		data, err := decodeData(r.Data)
		if err != nil {
			return nil, fmt.Errorf("postgres decode %s/%s: %w", q.Collection, r.ID, err)
		}
		out = append(out, Document{ID: r.ID, Data: data})
	}
	return out, nil
}

// buildQuery renders q as SQL over the jsonb data column.
func (s *PostgresStore) buildQuery(q Query) (string, []interface{}, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	args := []interface{}{q.Collection}
	where := []string{"collection = $1"}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return "", nil, fmt.Errorf("%w: field %q", ErrUnsupportedFilter, f.Field)
		}
		col := fmt.Sprintf("data->'%s'", f.Field)

		switch f.Op {
		case OpEqual:
			raw, err := json.Marshal(f.Value)
			if err != nil {
				return "", nil, err
			}
			where = append(where, fmt.Sprintf("%s = %s::jsonb", col, next(string(raw))))
		case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
			raw, err := json.Marshal(f.Value)
			if err != nil {
				return "", nil, err
			}
			p := next(string(raw))
			where = append(where, fmt.Sprintf("jsonb_typeof(%s) = jsonb_typeof(%s::jsonb) AND %s %s %s::jsonb", col, p, col, f.Op, p))
		case OpArrayContains:
			raw, err := json.Marshal([]interface{}{f.Value})
			if err != nil {
				return "", nil, err
			}
			where = append(where, fmt.Sprintf("jsonb_typeof(%s) = 'array' AND %s @> %s::jsonb", col, col, next(string(raw))))
		case OpIn:
			raw, err := json.Marshal(f.Value)
			if err != nil {
				return "", nil, err
			}
			where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements(%s::jsonb) e WHERE e = %s)", next(string(raw)), col))
		}
	}

	var orders []string
	for _, o := range q.Orders {
		if !fieldPattern.MatchString(o.Field) {
			return "", nil, fmt.Errorf("%w: order field %q", ErrUnsupportedFilter, o.Field)
		}
		where = append(where, fmt.Sprintf("data ? '%s'", o.Field))
		dir := "ASC"
		if o.Direction == Desc {
			dir = "DESC"
		}
		orders = append(orders, fmt.Sprintf("data->'%s' %s", o.Field, dir))
	}
	orders = append(orders, "id ASC")

	sqlText := fmt.Sprintf("SELECT id, data FROM %s WHERE %s ORDER BY %s",
		s.table, strings.Join(where, " AND "), strings.Join(orders, ", "))
	if q.Limit > 0 {
		sqlText += " LIMIT " + next(q.Limit)
	}
	return sqlText, args, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var row documentRow
	query := fmt.Sprintf("SELECT id, data FROM %s WHERE collection = $1 AND id = $2", s.table)
	if err := s.db.GetContext(ctx, &row, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres get %s/%s: %w", collection, id, err)
	}

	data, err := decodeData(row.Data)
	if err != nil {
		return nil, fmt.Errorf("postgres decode %s/%s: %w", collection, id, err)
	}
	return &Document{ID: row.ID, Data: data}, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("postgres encode %s/%s: %w", collection, id, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`, s.table)
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("postgres set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("postgres encode %s/%s: %w", collection, id, err)
	}

	query := fmt.Sprintf("UPDATE %s SET data = data || $3::jsonb WHERE collection = $1 AND id = $2", s.table)
	res, err := s.db.ExecContext(ctx, query, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("postgres update %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decodeData(raw []byte) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
