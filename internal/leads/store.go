package leads

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound        = errors.New("leads: not found")
	ErrInvalidArgument = errors.New("leads: invalid argument")
)

// Store reads and persists lead records.
type Store interface {
	Get(ctx context.Context, workspaceID, leadID string) (Lead, error)
	Update(ctx context.Context, lead Lead) error
}

// MemoryStore is an in-memory lead store for tests and early development.
// It enforces workspace isolation on reads.
type MemoryStore struct {
	mu    sync.Mutex
	leads map[string]Lead
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leads: map[string]Lead{}}
}

func (s *MemoryStore) Put(l Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.LeadID] = l
}

func (s *MemoryStore) Get(ctx context.Context, workspaceID, leadID string) (Lead, error) {
	if workspaceID == "" || leadID == "" {
		return Lead{}, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[leadID]
	if !ok || l.WorkspaceID != workspaceID {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryStore) Update(ctx context.Context, lead Lead) error {
	if lead.LeadID == "" || lead.WorkspaceID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.leads[lead.LeadID]; !ok || existing.WorkspaceID != lead.WorkspaceID {
		return ErrNotFound
	}
	s.leads[lead.LeadID] = lead
	return nil
}
