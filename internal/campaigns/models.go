package campaigns

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("campaigns: not found")

// Campaign holds the calling script and goals for one outbound campaign.
//
// CRUD for campaigns lives outside this service; the orchestrator and dialer
// only ever read campaigns.
type Campaign struct {
	CampaignID  string `json:"campaign_id" db:"campaign_id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	Name        string `json:"name" db:"name"`

	// CallerNumber is the E.164 number calls are placed from.
	CallerNumber string `json:"caller_number" db:"caller_number"`

	// OpeningScript supports {firstName}, {lastName}, {fullName}, {company}
	// and {jobTitle} placeholders filled from the lead record.
	OpeningScript string `json:"opening_script" db:"opening_script"`
	// ClosingScript is spoken when the customer asks to end the call.
	// Empty means the default closing line is used.
	ClosingScript string `json:"closing_script,omitempty" db:"closing_script"`

	// Goals steer post-call signal extraction (e.g. "budget", "timeline").
	Goals []string `json:"goals,omitempty" db:"goals"`

	Retry RetryPolicy `json:"retry" db:"retry"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RetryPolicy controls re-dialing of leads that did not pick up.
type RetryPolicy struct {
	MaxAttempts int           `json:"max_attempts"`
	RetryAfter  time.Duration `json:"retry_after"`
}

// Store provides read access to campaigns.
type Store interface {
	Get(ctx context.Context, workspaceID, campaignID string) (Campaign, error)
}

// MemoryStore is an in-memory campaign store for tests and early development.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]Campaign
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{campaigns: map[string]Campaign{}}
}

func (s *MemoryStore) Put(c Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.CampaignID] = c
}

func (s *MemoryStore) Get(ctx context.Context, workspaceID, campaignID string) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[campaignID]
	if !ok || c.WorkspaceID != workspaceID {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}
