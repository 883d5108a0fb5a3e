package calls

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("calls: record not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Store persists completed call records.
//
// Records are write-once: SaveRecord for an existing call_id must not
// overwrite the original row.
type Store interface {
	SaveRecord(ctx context.Context, rec CallRecord) error
	GetRecord(ctx context.Context, workspaceID, callID string) (CallRecord, error)
	ListRecords(ctx context.Context, workspaceID string, from, to time.Time, campaignID string) ([]CallRecord, error)
}

// MemoryStore is an in-memory Store for tests and early development.
// It enforces workspace isolation on reads.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]CallRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]CallRecord{}}
}

func (s *MemoryStore) SaveRecord(ctx context.Context, rec CallRecord) error {
	if rec.CallID == "" || rec.WorkspaceID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.CallID]; exists {
		// First write wins; finalize retries must not rewrite history.
		return nil
	}
	s.records[rec.CallID] = rec
	return nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, workspaceID, callID string) (CallRecord, error) {
	if workspaceID == "" || callID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[callID]
	if !ok || rec.WorkspaceID != workspaceID {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, workspaceID string, from, to time.Time, campaignID string) ([]CallRecord, error) {
	if workspaceID == "" {
		return nil, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CallRecord, 0)
	for _, rec := range s.records {
		if rec.WorkspaceID != workspaceID {
			continue
		}
		if campaignID != "" && rec.CampaignID != campaignID {
			continue
		}
		if !rec.EndedAt.IsZero() {
			if rec.EndedAt.Before(from) || !rec.EndedAt.Before(to) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count reports how many records exist, ignoring workspace. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
