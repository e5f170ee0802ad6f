package inquiry

import (
	"context"
	"slices"
	"sync"
)

type MemStore struct {
	mu        sync.RWMutex
	inquiries []Inquiry
	quotes    []QuoteRequest
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) CreateInquiry(ctx context.Context, in Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inquiries = append(s.inquiries, in)
	return nil
}

func (s *MemStore) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	s.mu.RLock()
	out := append(make([]Inquiry, 0, len(s.inquiries)), s.inquiries...)
	s.mu.RUnlock()

	slices.Reverse(out)
	return out, nil
}

func (s *MemStore) CreateQuote(ctx context.Context, q QuoteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)
	return nil
}

func (s *MemStore) ListQuotes(ctx context.Context) ([]QuoteRequest, error) {
	s.mu.RLock()
	out := append(make([]QuoteRequest, 0, len(s.quotes)), s.quotes...)
	s.mu.RUnlock()

	slices.Reverse(out)
	return out, nil
}
