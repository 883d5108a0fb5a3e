package dialer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"voicereach/internal/campaigns"
	"voicereach/internal/leads"
	"voicereach/internal/telephony"
)

type fakeProvider struct {
	placed  []telephony.PlaceCallRequest
	nextSid string
	failErr error
}

func (p *fakeProvider) Name() string                          { return "fake" }
func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *fakeProvider) PlaceCall(ctx context.Context, req telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	if p.failErr != nil {
		return telephony.PlaceCallResult{}, p.failErr
	}
	p.placed = append(p.placed, req)
	return telephony.PlaceCallResult{
		WorkspaceID:    req.WorkspaceID,
		ProviderCallID: p.nextSid,
		PlacedAt:       time.Now().UTC(),
	}, nil
}

func (p *fakeProvider) Hangup(ctx context.Context, providerCallID string) error { return nil }

func testDialer(t *testing.T, provider *fakeProvider) (*Dialer, *leads.MemoryStore, *campaigns.MemoryStore) {
	t.Helper()
	leadStore := leads.NewMemoryStore()
	campStore := campaigns.NewMemoryStore()
	cfg := Config{MaxLiveCalls: 3, SlotTTL: time.Minute, PublicBaseURL: "https://voice.example.com"}
	d := New(cfg, provider, leadStore, campStore, NewPendingCalls(), nil, slog.Default())
	return d, leadStore, campStore
}

func seed(leadStore *leads.MemoryStore, campStore *campaigns.MemoryStore) {
	leadStore.Put(leads.Lead{
		LeadID:      "lead-1",
		WorkspaceID: "ws-1",
		FirstName:   "Ana",
		LastName:    "Lee",
		Phone:       "+15550100",
	})
	campStore.Put(campaigns.Campaign{
		CampaignID:    "camp-1",
		WorkspaceID:   "ws-1",
		CallerNumber:  "+15550199",
		OpeningScript: "Hi {firstName}!",
		Retry:         campaigns.RetryPolicy{MaxAttempts: 3},
	})
}

func TestStartCall(t *testing.T) {
	provider := &fakeProvider{nextSid: "CA100"}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)

	res, err := d.StartCall(context.Background(), "ws-1", "camp-1", "lead-1")
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if res.ProviderCallID != "CA100" {
		t.Errorf("ProviderCallID = %q", res.ProviderCallID)
	}

	if len(provider.placed) != 1 {
		t.Fatalf("placed %d calls, want 1", len(provider.placed))
	}
	req := provider.placed[0]
	if req.To != "+15550100" || req.From != "+15550199" {
		t.Errorf("placed to=%q from=%q", req.To, req.From)
	}
	if req.AnswerURL != "https://voice.example.com/webhooks/twilio/answer" {
		t.Errorf("AnswerURL = %q", req.AnswerURL)
	}
	if !req.MachineDetection {
		t.Error("expected machine detection enabled")
	}

	lead, camp, ok := d.Pending().Resolve("CA100")
	if !ok {
		t.Fatal("placement not registered")
	}
	if lead.LeadID != "lead-1" || camp.CampaignID != "camp-1" {
		t.Errorf("placement lead=%q campaign=%q", lead.LeadID, camp.CampaignID)
	}
}

func TestStartCall_DoNotCallRejected(t *testing.T) {
	provider := &fakeProvider{nextSid: "CA101"}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)
	leadStore.Put(leads.Lead{
		LeadID:      "lead-dnc",
		WorkspaceID: "ws-1",
		Phone:       "+15550101",
		DoNotCall:   true,
	})

	_, err := d.StartCall(context.Background(), "ws-1", "camp-1", "lead-dnc")
	if !errors.Is(err, ErrLeadNotCallable) {
		t.Fatalf("err = %v, want ErrLeadNotCallable", err)
	}
	if len(provider.placed) != 0 {
		t.Error("no call should be placed for a do-not-call lead")
	}
}

func TestStartCall_NotDueYet(t *testing.T) {
	provider := &fakeProvider{nextSid: "CA102"}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)
	later := time.Now().UTC().Add(24 * time.Hour)
	leadStore.Put(leads.Lead{
		LeadID:        "lead-later",
		WorkspaceID:   "ws-1",
		Phone:         "+15550102",
		NextContactAt: &later,
	})

	_, err := d.StartCall(context.Background(), "ws-1", "camp-1", "lead-later")
	if !errors.Is(err, ErrNotDue) {
		t.Fatalf("err = %v, want ErrNotDue", err)
	}
}

func TestStartCall_MaxAttemptsExhausted(t *testing.T) {
	provider := &fakeProvider{nextSid: "CA103"}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)
	leadStore.Put(leads.Lead{
		LeadID:      "lead-worn",
		WorkspaceID: "ws-1",
		Phone:       "+15550103",
		Attempts:    3,
	})

	_, err := d.StartCall(context.Background(), "ws-1", "camp-1", "lead-worn")
	if !errors.Is(err, ErrLeadNotCallable) {
		t.Fatalf("err = %v, want ErrLeadNotCallable", err)
	}
}

func TestStartCall_WorkspaceIsolation(t *testing.T) {
	provider := &fakeProvider{nextSid: "CA104"}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)

	_, err := d.StartCall(context.Background(), "ws-other", "camp-1", "lead-1")
	if !errors.Is(err, leads.ErrNotFound) {
		t.Fatalf("err = %v, want leads.ErrNotFound", err)
	}
}

func TestStartCall_PlaceFailure(t *testing.T) {
	provider := &fakeProvider{failErr: errors.New("provider down")}
	d, leadStore, campStore := testDialer(t, provider)
	seed(leadStore, campStore)

	_, err := d.StartCall(context.Background(), "ws-1", "camp-1", "lead-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if d.Pending().Len() != 0 {
		t.Error("failed placement must not be registered")
	}
}

func TestPendingCalls_Lifecycle(t *testing.T) {
	p := NewPendingCalls()
	placedAt := time.Now().UTC().Add(-20 * time.Minute)
	p.Register("CA1", leads.Lead{LeadID: "l1", WorkspaceID: "ws-1"}, campaigns.Campaign{CampaignID: "c1"}, placedAt)
	p.Register("CA2", leads.Lead{LeadID: "l2", WorkspaceID: "ws-1"}, campaigns.Campaign{CampaignID: "c1"}, time.Now().UTC())

	if _, _, ok := p.Resolve("CA1"); !ok {
		t.Fatal("CA1 should resolve")
	}
	// Resolve is non-destructive so webhook retries see the same placement.
	if _, _, ok := p.Resolve("CA1"); !ok {
		t.Fatal("CA1 should resolve again")
	}

	expired := p.Expired(time.Now().UTC(), 15*time.Minute)
	if len(expired) != 1 || expired[0] != "CA1" {
		t.Fatalf("Expired = %v, want [CA1]", expired)
	}

	if !p.Discard("CA1") {
		t.Fatal("first Discard should win")
	}
	if p.Discard("CA1") {
		t.Fatal("second Discard must report the entry already gone")
	}
	if _, _, ok := p.Resolve("CA1"); ok {
		t.Fatal("CA1 should be gone after Discard")
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
}
