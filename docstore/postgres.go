package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/yelpcamp-go/observability"
)

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Collection stored as JSONB rows in the documents table.
// Filters become JSONB containment (data @> filter), so equality on any
// top-level field is served by the GIN index.
type Postgres[T any] struct {
	hooks[T]

	db      DBTX
	name    string
	timeout time.Duration
}

// Ensure Postgres implements Collection at compile time.
var _ Collection[struct{ Base }] = (*Postgres[struct{ Base }])(nil)

// NewPostgres creates a collection backed by the documents table.
// timeout bounds every statement the collection issues.
func NewPostgres[T any](db DBTX, name string, timeout time.Duration) *Postgres[T] {
	return &Postgres[T]{db: db, name: name, timeout: timeout}
}

// Name returns the collection name.
func (p *Postgres[T]) Name() string { return p.name }

// Find returns matching documents in insertion order.
func (p *Postgres[T]) Find(ctx context.Context, filter Filter) (out []*T, err error) {
	defer observability.ObserveStore(p.name, "find", time.Now(), &err)
	ctx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	where, args, err := p.where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.Query(ctx,
		`SELECT data FROM documents WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", p.name, err)
	}
	defer rows.Close()

	out = make([]*T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p.name, err)
		}
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", p.name, err)
	}
	return out, nil
}

// FindByID returns the document or ErrNotFound.
func (p *Postgres[T]) FindByID(ctx context.Context, id uuid.UUID) (doc *T, err error) {
	defer observability.ObserveStore(p.name, "find_by_id", time.Now(), &err)
	ctx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	var raw []byte
	err = p.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		p.name, id).Scan(&raw)
	if err != nil {
		return nil, p.notFound(err)
	}
	return decode[T](raw)
}

// FindByIDAndUpdate merges patch into the stored JSON in a single statement,
// so concurrent patches to one document serialize on the row lock.
func (p *Postgres[T]) FindByIDAndUpdate(ctx context.Context, id uuid.UUID, patch Patch) (doc *T, err error) {
	defer observability.ObserveStore(p.name, "find_by_id_and_update", time.Now(), &err)
	ctx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	clean := make(Patch, len(patch))
	for k, v := range patch {
		if k != "id" {
			clean[k] = v
		}
	}
	patchJSON, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encoding patch for %s/%s: %w", p.name, id, err)
	}

	var raw []byte
	err = p.db.QueryRow(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING data`,
		p.name, id, patchJSON).Scan(&raw)
	if err != nil {
		return nil, p.notFound(err)
	}
	return decode[T](raw)
}

// FindByIDAndDelete removes the document and then runs the delete hooks.
func (p *Postgres[T]) FindByIDAndDelete(ctx context.Context, id uuid.UUID) (doc *T, err error) {
	defer observability.ObserveStore(p.name, "find_by_id_and_delete", time.Now(), &err)
	opCtx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	var raw []byte
	err = p.db.QueryRow(opCtx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2 RETURNING data`,
		p.name, id).Scan(&raw)
	if err != nil {
		return nil, p.notFound(err)
	}
	doc, err = decode[T](raw)
	if err != nil {
		return nil, err
	}
	// Hooks run on the caller's context; each statement they issue is bounded separately.
	if err := p.runDelete(ctx, p.name, doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// Save upserts doc.
func (p *Postgres[T]) Save(ctx context.Context, doc *T) (err error) {
	defer observability.ObserveStore(p.name, "save", time.Now(), &err)
	ctx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	id, err := ensureID(doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", p.name, id, err)
	}
	_, err = p.db.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		p.name, id, raw)
	if err != nil {
		return fmt.Errorf("saving %s/%s: %w", p.name, id, err)
	}
	return nil
}

// DeleteMany removes every matching document.
func (p *Postgres[T]) DeleteMany(ctx context.Context, filter Filter) (n int64, err error) {
	defer observability.ObserveStore(p.name, "delete_many", time.Now(), &err)
	ctx, cancel := withDeadline(ctx, p.timeout)
	defer cancel()

	where, args, err := p.where(filter)
	if err != nil {
		return 0, err
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM documents WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", p.name, err)
	}
	return tag.RowsAffected(), nil
}

// where renders the filter as SQL. $1 is always the collection name.
func (p *Postgres[T]) where(filter Filter) (string, []any, error) {
	clause := "collection = $1"
	args := []any{p.name}
	if len(filter.Fields) > 0 {
		containment, err := json.Marshal(filter.Fields)
		if err != nil {
			return "", nil, fmt.Errorf("encoding filter for %s: %w", p.name, err)
		}
		args = append(args, containment)
		clause += fmt.Sprintf(" AND data @> $%d::jsonb", len(args))
	}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		clause += fmt.Sprintf(" AND id = ANY($%d)", len(args))
	}
	return clause, args, nil
}

func (p *Postgres[T]) notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", p.name, err)
}
