package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateID  = errors.New("record with this id already exists")
	ErrInvalidPatch = errors.New("invalid patch")
	ErrUnknownField = errors.New("unknown filter field")
	// ErrInvalid is wrapped by Spec.Validate implementations.
	ErrInvalid = errors.New("invalid record")
)

// AllValues is the filter value meaning "do not filter".
const AllValues = "all"

// Spec describes how a record type is stored and queried.
type Spec[T any] struct {
	// Key is the facade key holding the whole collection.
	Key string
	// LegacyKeys are raw keys written by the first dashboard version. They are
	// read once, migrated under Key, and deleted.
	LegacyKeys []string
	// DecodeLegacy converts a legacy value; json.Unmarshal into []T when nil.
	DecodeLegacy func(raw []byte) ([]T, error)
	GetID        func(T) ID
	SetID        func(*T, ID)
	// Fields maps filterable field names to their value.
	Fields map[string]func(T) string
	// SearchText returns the texts a free-text query is matched against.
	SearchText func(T) []string
	// Prepend places new records first instead of last.
	Prepend bool
	// Touch stamps creation and modification times.
	Touch func(item *T, now time.Time, created bool)
	// Seed is returned while nothing was ever stored.
	Seed func() []T
	// Validate rejects a record before it is written.
	Validate func(T) error
}

type Filter struct {
	Field string
	Value string
	Query string
}

// Manager persists a collection of T as one snapshot per mutation. Mutations
// are serialized, so concurrent requests observe a single order of writes.
type Manager[T any] struct {
	mu      sync.Mutex
	storage storage.Service
	clock   utils.Clock
	spec    Spec[T]
}

func NewManager[T any](storage storage.Service, clock utils.Clock, spec Spec[T]) *Manager[T] {
	return &Manager[T]{storage: storage, clock: clock, spec: spec}
}

func (m *Manager[T]) Key() string {
	return m.spec.Key
}

func (m *Manager[T]) load(ctx context.Context) ([]T, error) {
	var items []T
	found, err := m.storage.LoadInto(ctx, m.spec.Key, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", m.spec.Key, err)
	}
	if found {
		return items, nil
	}

	for _, legacyKey := range m.spec.LegacyKeys {
		migrated, ok, err := m.migrate(ctx, legacyKey)
		if err != nil {
			return nil, err
		}
		if ok {
			return migrated, nil
		}
	}

	if m.spec.Seed != nil {
		return m.spec.Seed(), nil
	}
	return []T{}, nil
}

func (m *Manager[T]) migrate(ctx context.Context, legacyKey string) ([]T, bool, error) {
	raw, ok, err := m.storage.LoadLegacy(ctx, legacyKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read legacy %s: %w", legacyKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	var items []T
	if m.spec.DecodeLegacy != nil {
		items, err = m.spec.DecodeLegacy(raw)
	} else {
		err = json.Unmarshal(raw, &items)
	}
	if err != nil {
		log.Warnf("skipping unreadable legacy entry %s: %v", legacyKey, err)
		return nil, false, nil
	}
	for i := range items {
		if m.spec.GetID(items[i]) == "" {
			m.spec.SetID(&items[i], NewID())
		}
	}

	if _, err := m.storage.Save(ctx, m.spec.Key, items); err != nil {
		return nil, false, fmt.Errorf("failed to migrate %s: %w", legacyKey, err)
	}
	if err := m.storage.RemoveLegacy(ctx, legacyKey); err != nil {
		log.Warnf("migrated %s but could not remove it: %v", legacyKey, err)
	}
	log.Infof("migrated %d records from legacy key %s to %s", len(items), legacyKey, m.spec.Key)
	return items, true, nil
}

func (m *Manager[T]) save(ctx context.Context, items []T) error {
	if _, err := m.storage.Save(ctx, m.spec.Key, items); err != nil {
		return fmt.Errorf("failed to save %s: %w", m.spec.Key, err)
	}
	return nil
}

func (m *Manager[T]) validate(item T) error {
	if m.spec.Validate == nil {
		return nil
	}
	return m.spec.Validate(item)
}

func (m *Manager[T]) indexOf(items []T, id ID) int {
	return slices.IndexFunc(items, func(item T) bool { return m.spec.GetID(item) == id })
}

func (m *Manager[T]) All(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Manager[T]) Get(ctx context.Context, id ID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	items, err := m.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := m.indexOf(items, id)
	if idx < 0 {
		return zero, ErrNotFound
	}
	return items[idx], nil
}

// Add stores item, assigning a fresh id when it has none.
func (m *Manager[T]) Add(ctx context.Context, item T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	items, err := m.load(ctx)
	if err != nil {
		return zero, err
	}

	id := m.spec.GetID(item)
	if id == "" {
		m.spec.SetID(&item, NewID())
	} else if m.indexOf(items, id) >= 0 {
		return zero, ErrDuplicateID
	}
	if err := m.validate(item); err != nil {
		return zero, err
	}
	if m.spec.Touch != nil {
		m.spec.Touch(&item, m.clock.Now(), true)
	}

	if m.spec.Prepend {
		items = slices.Insert(items, 0, item)
	} else {
		items = append(items, item)
	}
	if err := m.save(ctx, items); err != nil {
		return zero, err
	}
	return item, nil
}

// Update merges patch into the record's top-level fields. The id is never
// changed, whatever the patch says.
func (m *Manager[T]) Update(ctx context.Context, id ID, patch map[string]any) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	items, err := m.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := m.indexOf(items, id)
	if idx < 0 {
		return zero, ErrNotFound
	}

	updated, err := applyPatch(items[idx], patch)
	if err != nil {
		return zero, err
	}
	m.spec.SetID(&updated, id)
	if err := m.validate(updated); err != nil {
		return zero, err
	}
	if m.spec.Touch != nil {
		m.spec.Touch(&updated, m.clock.Now(), false)
	}

	items[idx] = updated
	if err := m.save(ctx, items); err != nil {
		return zero, err
	}
	return updated, nil
}

// Replace swaps the stored record carrying item's id for item.
func (m *Manager[T]) Replace(ctx context.Context, item T) (T, error) {
	return m.Mutate(ctx, m.spec.GetID(item), func(current *T) error {
		*current = item
		return nil
	})
}

// Mutate applies fn to the record with the given id and saves the result.
func (m *Manager[T]) Mutate(ctx context.Context, id ID, fn func(*T) error) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	items, err := m.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := m.indexOf(items, id)
	if idx < 0 {
		return zero, ErrNotFound
	}

	item := items[idx]
	if err := fn(&item); err != nil {
		return zero, err
	}
	m.spec.SetID(&item, id)
	if err := m.validate(item); err != nil {
		return zero, err
	}
	if m.spec.Touch != nil {
		m.spec.Touch(&item, m.clock.Now(), false)
	}
	items[idx] = item
	if err := m.save(ctx, items); err != nil {
		return zero, err
	}
	return item, nil
}

// Remove deletes the record; false means there was nothing to delete.
func (m *Manager[T]) Remove(ctx context.Context, id ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	idx := m.indexOf(items, id)
	if idx < 0 {
		return false, nil
	}
	items = slices.Delete(items, idx, idx+1)
	if err := m.save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the records matching filter, in stored order. Field matching and
// the free-text query are case-insensitive; the value "all" disables the field
// filter.
func (m *Manager[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	var fieldFn func(T) string
	if filter.Field != "" && filter.Value != "" && !strings.EqualFold(filter.Value, AllValues) {
		var ok bool
		if fieldFn, ok = m.spec.Fields[filter.Field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, filter.Field)
		}
	}

	items, err := m.All(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if fieldFn != nil && !strings.EqualFold(fieldFn(item), filter.Value) {
			continue
		}
		if query != "" && !m.matches(item, query) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *Manager[T]) matches(item T, query string) bool {
	if m.spec.SearchText == nil {
		return true
	}
	for _, text := range m.spec.SearchText(item) {
		if strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}
	return false
}

// ReplaceAll overwrites the whole collection, e.g. when restoring a backup.
func (m *Manager[T]) ReplaceAll(ctx context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	for i := range items {
		if m.spec.GetID(items[i]) == "" {
			m.spec.SetID(&items[i], NewID())
		}
	}
	return m.save(ctx, items)
}

// Transform loads the collection, lets fn rewrite it and saves the result when
// fn reports a change.
func (m *Manager[T]) Transform(ctx context.Context, fn func([]T) ([]T, bool, error)) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	next, changed, err := fn(items)
	if err != nil {
		return nil, err
	}
	if !changed {
		return items, nil
	}
	for i := range next {
		if m.spec.GetID(next[i]) == "" {
			m.spec.SetID(&next[i], NewID())
		}
	}
	if err := m.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Purge removes the collection and any legacy copies of it.
func (m *Manager[T]) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Remove(ctx, m.spec.Key); err != nil {
		return err
	}
	for _, legacyKey := range m.spec.LegacyKeys {
		if err := m.storage.RemoveLegacy(ctx, legacyKey); err != nil {
			return fmt.Errorf("failed to remove legacy %s: %w", legacyKey, err)
		}
	}
	return nil
}

func applyPatch[T any](item T, patch map[string]any) (T, error) {
	var zero T
	current, err := json.Marshal(item)
	if err != nil {
		return zero, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &fields); err != nil {
		return zero, err
	}
	for name, value := range patch {
		if name == "id" {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return zero, fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, name, err)
		}
		fields[name] = encoded
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}
	var updated T
	if err := json.Unmarshal(merged, &updated); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return updated, nil
}
