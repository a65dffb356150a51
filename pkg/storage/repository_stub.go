package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// RepositoryStub is an in-memory Repository. Setting FailWrites makes every
// Set return that error, which is how tests simulate a full or broken store.
type RepositoryStub struct {
	mu         sync.RWMutex
	values     map[string]string
	order      []string
	FailWrites error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{values: make(map[string]string)}
}

func (r *RepositoryStub) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *RepositoryStub) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = value
	return nil
}

func (r *RepositoryStub) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; !ok {
		return nil
	}
	delete(r.values, key)
	r.order = slices.DeleteFunc(r.order, func(k string) bool { return k == key })
	return nil
}

func (r *RepositoryStub) Keys(_ context.Context, prefix string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.order))
	for _, k := range r.order {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Raw writes value under key bypassing the facade, e.g. to plant legacy or corrupt entries.
func (r *RepositoryStub) Raw(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = value
}
