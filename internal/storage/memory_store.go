package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory ObjectStore used by tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*Object
	refs    map[string][]string
	latest  string
	// Puts counts Put calls, including deduplicated ones.
	Puts int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*Object),
		refs:    make(map[string][]string),
	}
}

func (m *MemoryStore) Put(ctx context.Context, obj *Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++

	hash := HashBytes(obj.Data)
	if _, ok := m.objects[hash]; ok {
		return hash, nil
	}
	stored := *obj
	stored.Hash = hash
	stored.Data = append([]byte(nil), obj.Data...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.objects[hash] = &stored
	return hash, nil
}

func (m *MemoryStore) Get(_ context.Context, hash string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	cp := *obj
	cp.Data = append([]byte(nil), obj.Data...)
	return &cp, nil
}

func (m *MemoryStore) Exists(_ context.Context, hash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[hash]
	return ok, nil
}

func (m *MemoryStore) List(_ context.Context, objectType ObjectType) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var hashes []string
	for hash, obj := range m.objects {
		if objectType == "" || obj.Type == objectType {
			hashes = append(hashes, hash)
		}
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (m *MemoryStore) AddBuildRef(_ context.Context, buildID string, hashes []string) error {
	if err := checkRefName(buildID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[buildID] = append([]string(nil), hashes...)
	return nil
}

func (m *MemoryStore) BuildRef(_ context.Context, buildID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refs[buildID], nil
}

func (m *MemoryStore) SetLatest(_ context.Context, manifestHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[manifestHash]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, manifestHash)
	}
	m.latest = manifestHash
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == "" {
		return "", fmt.Errorf("%w: refs/latest", ErrNotFound)
	}
	return m.latest, nil
}

func (m *MemoryStore) Close() error { return nil }
