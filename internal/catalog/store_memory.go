package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps products in insertion order.
type MemStore struct {
	mu    sync.RWMutex
	m     map[string]Product
	order []string
	now   func() time.Time
}

// NewMemStore returns a store pre-populated with SeedProducts.
func NewMemStore() *MemStore {
	s := NewEmptyMemStore()
	for _, p := range SeedProducts() {
		_, _ = s.Create(context.Background(), p)
	}
	return s
}

func NewEmptyMemStore() *MemStore {
	return &MemStore{
		m:   map[string]Product{},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.m[id].clone())
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, false, nil
	}
	return p.clone(), true, nil
}

func (s *MemStore) Create(ctx context.Context, in NewProduct) (Product, error) {
	now := s.now()
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Image:       cloneImage(in.Image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[p.ID] = p
	s.order = append(s.order, p.ID)
	return p.clone(), nil
}

func (s *MemStore) Update(ctx context.Context, id string, patch Patch) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, false, nil
	}

	p = p.apply(patch, s.now())
	s.m[id] = p
	return p.clone(), true, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return false, nil
	}

	delete(s.m, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true, nil
}
