package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantmetrics/schemamap/internal/mapping"
)

// MemoryStore implements Store using in-memory state. Intended for tests
// and demos — no SQLite required.
type MemoryStore struct {
	mu      sync.RWMutex
	uploads map[uuid.UUID]*Upload
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{uploads: make(map[uuid.UUID]*Upload)}
}

func (s *MemoryStore) CreateUpload(_ context.Context, u *Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	cp.Headers = append([]string(nil), u.Headers...)
	cp.Mappings = append([]mapping.Mapping(nil), u.Mappings...)
	s.uploads[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUpload(_ context.Context, id uuid.UUID) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.Headers = append([]string(nil), u.Headers...)
	cp.Mappings = append([]mapping.Mapping(nil), u.Mappings...)
	return &cp, nil
}

func (s *MemoryStore) ListUploads(_ context.Context, limit, offset int) ([]*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Upload, 0, len(s.uploads))
	for _, u := range s.uploads {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]*Upload, 0, len(all))
	for _, u := range all {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) SaveMappings(_ context.Context, id uuid.UUID, mappings []mapping.Mapping, tier int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.uploads[id]
	if !ok {
		return ErrNotFound
	}
	u.Mappings = append([]mapping.Mapping(nil), mappings...)
	u.Tier = tier
	u.UpdatedAt = time.Now().UTC()
	return nil
}
