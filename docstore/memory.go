package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/observability"
)

// Memory is an in-memory Collection. Documents are kept as encoded JSON so
// callers never share pointers with the store, mirroring what a round trip
// through PostgreSQL would give them.
type Memory[T any] struct {
	hooks[T]

	name    string
	timeout time.Duration

	mu    sync.RWMutex
	docs  map[uuid.UUID][]byte
	order []uuid.UUID // insertion order, for stable Find results
}

// Ensure Memory implements Collection at compile time.
var _ Collection[struct{ Base }] = (*Memory[struct{ Base }])(nil)

// NewMemory creates an empty in-memory collection.
func NewMemory[T any](name string, timeout time.Duration) *Memory[T] {
	return &Memory[T]{
		name:    name,
		timeout: timeout,
		docs:    make(map[uuid.UUID][]byte),
	}
}

// Name returns the collection name.
func (m *Memory[T]) Name() string { return m.name }

// Find returns matching documents in insertion order.
func (m *Memory[T]) Find(ctx context.Context, filter Filter) (out []*T, err error) {
	defer observability.ObserveStore(m.name, "find", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want, err := normalizeFields(filter.Fields)
	if err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out = make([]*T, 0)
	for _, id := range m.order {
		if len(filter.IDs) > 0 && !ids[id] {
			continue
		}
		raw := m.docs[id]
		ok, err := matches(raw, want)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// FindByID returns the document or ErrNotFound.
func (m *Memory[T]) FindByID(ctx context.Context, id uuid.UUID) (doc *T, err error) {
	defer observability.ObserveStore(m.name, "find_by_id", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode[T](raw)
}

// FindByIDAndUpdate merges patch into the stored document and returns the result.
func (m *Memory[T]) FindByIDAndUpdate(ctx context.Context, id uuid.UUID, patch Patch) (doc *T, err error) {
	defer observability.ObserveStore(m.name, "find_by_id_and_update", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", m.name, id, err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding patch for %s/%s: %w", m.name, id, err)
	}
	// Decode into T before storing so a patch that does not fit the type is rejected.
	doc, err = decode[T](merged)
	if err != nil {
		return nil, err
	}
	canonical, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	m.docs[id] = canonical
	return doc, nil
}

// FindByIDAndDelete removes the document and then runs the delete hooks.
func (m *Memory[T]) FindByIDAndDelete(ctx context.Context, id uuid.UUID) (doc *T, err error) {
	defer observability.ObserveStore(m.name, "find_by_id_and_delete", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	raw, ok := m.docs[id]
	if ok {
		delete(m.docs, id)
		m.removeFromOrder(id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	doc, err = decode[T](raw)
	if err != nil {
		return nil, err
	}
	// Hooks run outside the lock; they usually touch other collections.
	hookCtx, cancel := withDeadline(ctx, m.timeout)
	defer cancel()
	if err := m.runDelete(hookCtx, m.name, doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// Save inserts or replaces doc.
func (m *Memory[T]) Save(ctx context.Context, doc *T) (err error) {
	defer observability.ObserveStore(m.name, "save", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := ensureID(doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", m.name, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; !exists {
		m.order = append(m.order, id)
	}
	m.docs[id] = raw
	return nil
}

// DeleteMany removes every matching document.
func (m *Memory[T]) DeleteMany(ctx context.Context, filter Filter) (n int64, err error) {
	defer observability.ObserveStore(m.name, "delete_many", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	want, err := normalizeFields(filter.Fields)
	if err != nil {
		return 0, err
	}
	ids := make(map[uuid.UUID]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	for _, id := range m.order {
		drop := len(filter.IDs) == 0 || ids[id]
		if drop {
			ok, err := matches(m.docs[id], want)
			if err != nil {
				return n, err
			}
			drop = ok
		}
		if drop {
			delete(m.docs, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return n, nil
}

func (m *Memory[T]) removeFromOrder(id uuid.UUID) {
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func decode[T any](raw []byte) (*T, error) {
	doc := new(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

func normalizeFields(fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter field %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func matches(raw []byte, want map[string]any) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false, err
	}
	for k, v := range want {
		if !reflect.DeepEqual(fields[k], v) {
			return false, nil
		}
	}
	return true, nil
}
