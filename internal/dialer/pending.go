package dialer

import (
	"sync"
	"time"

	"voicereach/internal/campaigns"
	"voicereach/internal/leads"
)

// placement pairs a provider call id with the lead and campaign it was
// dialed for, from PlaceCall until the answer webhook claims it.
type placement struct {
	Lead     leads.Lead
	Campaign campaigns.Campaign
	PlacedAt time.Time
}

// PendingCalls tracks placed calls that have not yet connected. It backs
// the answer webhook's lookup of which lead a ringing call belongs to.
type PendingCalls struct {
	mu      sync.Mutex
	pending map[string]placement
}

func NewPendingCalls() *PendingCalls {
	return &PendingCalls{pending: map[string]placement{}}
}

func (p *PendingCalls) Register(providerCallID string, lead leads.Lead, camp campaigns.Campaign, placedAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[providerCallID] = placement{Lead: lead, Campaign: camp, PlacedAt: placedAt}
}

// Resolve looks up a pending placement. The entry stays until Discard so
// provider webhook retries resolve the same way.
func (p *PendingCalls) Resolve(providerCallID string) (leads.Lead, campaigns.Campaign, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.pending[providerCallID]
	if !ok {
		return leads.Lead{}, campaigns.Campaign{}, false
	}
	return pl.Lead, pl.Campaign, true
}

// Discard forgets a placement once its call reached a terminal status. It
// reports whether an entry was removed, so exactly one caller wins when
// provider callbacks race or retry.
func (p *PendingCalls) Discard(providerCallID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[providerCallID]; !ok {
		return false
	}
	delete(p.pending, providerCallID)
	return true
}

func (p *PendingCalls) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Expired returns the ids of placements older than maxAge. The caller
// releases their dial slots and discards them.
func (p *PendingCalls) Expired(now time.Time, maxAge time.Duration) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for id, pl := range p.pending {
		if now.Sub(pl.PlacedAt) > maxAge {
			ids = append(ids, id)
		}
	}
	return ids
}
