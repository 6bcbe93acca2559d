// Package docstore is the document store the resource services talk to.
//
// A Collection holds JSON documents of one Go type. It offers the small set of
// operations the application needs: find by filter, find by id, patch by id,
// delete by id, save, delete many, and post-delete hooks used for cascades.
// Relationships are modeled with a single foreign key on the child document;
// "populate" is a query-time Find on that key.
//
// Two implementations exist: Memory (tests, STORE_BACKEND=memory) and Postgres
// (JSONB rows in the documents table).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidDocument is returned when a value does not embed Base.
	ErrInvalidDocument = errors.New("document type must embed docstore.Base")
)

// Document is implemented by every stored type through an embedded Base.
type Document interface {
	DocumentID() uuid.UUID
	SetDocumentID(id uuid.UUID)
}

// Base carries the document id. Embed it in stored structs.
type Base struct {
	ID uuid.UUID `json:"id"`
}

// DocumentID returns the id.
func (b *Base) DocumentID() uuid.UUID { return b.ID }

// SetDocumentID sets the id.
func (b *Base) SetDocumentID(id uuid.UUID) { b.ID = id }

// Patch is a shallow set of field updates keyed by JSON field name.
type Patch map[string]any

// Filter selects documents by exact field values (JSON names) and optionally
// by a set of ids. The zero Filter matches everything.
type Filter struct {
	Fields map[string]any
	IDs    []uuid.UUID
}

// All matches every document in a collection.
func All() Filter { return Filter{} }

// Where matches documents whose field equals value.
func Where(field string, value any) Filter {
	return Filter{}.And(field, value)
}

// ByIDs matches documents whose id is in ids.
func ByIDs(ids ...uuid.UUID) Filter {
	return Filter{IDs: ids}
}

// And adds another field equality to the filter.
func (f Filter) And(field string, value any) Filter {
	fields := make(map[string]any, len(f.Fields)+1)
	for k, v := range f.Fields {
		fields[k] = v
	}
	fields[field] = value
	return Filter{Fields: fields, IDs: f.IDs}
}

// DeleteHook runs after a document was removed by FindByIDAndDelete.
type DeleteHook[T any] func(ctx context.Context, deleted *T) error

// Collection is the document store contract shared by both backends.
type Collection[T any] interface {
	// Name is the collection name, e.g. "campgrounds".
	Name() string
	// Find returns matching documents in insertion order.
	Find(ctx context.Context, filter Filter) ([]*T, error)
	// FindByID returns ErrNotFound when the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	// FindByIDAndUpdate applies patch and returns the updated document.
	FindByIDAndUpdate(ctx context.Context, id uuid.UUID, patch Patch) (*T, error)
	// FindByIDAndDelete removes the document, runs delete hooks and returns it.
	FindByIDAndDelete(ctx context.Context, id uuid.UUID) (*T, error)
	// Save inserts or replaces doc, assigning an id when it has none.
	Save(ctx context.Context, doc *T) error
	// DeleteMany removes every match and reports how many were removed.
	// Delete hooks do not run.
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	// OnDelete registers a post-delete hook.
	OnDelete(hook DeleteHook[T])
}

// hooks is shared by both backends.
type hooks[T any] struct {
	onDelete []DeleteHook[T]
}

func (h *hooks[T]) OnDelete(hook DeleteHook[T]) {
	h.onDelete = append(h.onDelete, hook)
}

func (h *hooks[T]) runDelete(ctx context.Context, name string, doc *T) error {
	for _, hook := range h.onDelete {
		if err := hook(ctx, doc); err != nil {
			return fmt.Errorf("%s post-delete hook: %w", name, err)
		}
	}
	return nil
}

func asDocument[T any](doc *T) (Document, error) {
	d, ok := any(doc).(Document)
	if !ok {
		return nil, ErrInvalidDocument
	}
	return d, nil
}

// ensureID gives doc a fresh id when it has none and returns the id.
func ensureID[T any](doc *T) (uuid.UUID, error) {
	d, err := asDocument(doc)
	if err != nil {
		return uuid.Nil, err
	}
	if d.DocumentID() == uuid.Nil {
		d.SetDocumentID(uuid.New())
	}
	return d.DocumentID(), nil
}

// normalize round-trips v through JSON so Go values compare equal to their
// decoded JSON form (uuid.UUID -> string, int -> float64 and so on).
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// withDeadline bounds a single store operation.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
