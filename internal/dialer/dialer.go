package dialer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voicereach/internal/campaigns"
	"voicereach/internal/leads"
	"voicereach/internal/telephony"
	"voicereach/pkg/utils"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLeadNotCallable = errors.New("dialer: lead not callable")
	ErrCapacityFull    = errors.New("dialer: workspace live-call limit reached")
	ErrNotDue          = errors.New("dialer: lead not due for contact yet")
)

// Config bounds outbound dialing.
type Config struct {
	// MaxLiveCalls caps concurrent calls per workspace.
	MaxLiveCalls int
	// SlotTTL bounds how long a slot may stay held; calls never outlive it.
	SlotTTL time.Duration

	// PublicBaseURL is the externally reachable base for provider webhooks.
	PublicBaseURL string
}

func (c Config) withDefaults() Config {
	out := c
	if out.MaxLiveCalls <= 0 {
		out.MaxLiveCalls = 10
	}
	if out.SlotTTL <= 0 {
		out.SlotTTL = 15 * time.Minute
	}
	return out
}

// Dialer places outbound calls: eligibility check, per-workspace capacity,
// provider placement, pending-call registration.
type Dialer struct {
	cfg       Config
	provider  telephony.Provider
	leads     leads.Store
	campaigns campaigns.Store
	pending   *PendingCalls
	rdb       *redis.Client
	log       *slog.Logger
}

func New(cfg Config, provider telephony.Provider, leadStore leads.Store, campaignStore campaigns.Store, pending *PendingCalls, rdb *redis.Client, log *slog.Logger) *Dialer {
	return &Dialer{
		cfg:       cfg.withDefaults(),
		provider:  provider,
		leads:     leadStore,
		campaigns: campaignStore,
		pending:   pending,
		rdb:       rdb,
		log:       log,
	}
}

// StartCall dials one lead for a campaign and returns the provider call id.
// The conversation state is created later, by the answer webhook, once the
// callee actually picks up.
func (d *Dialer) StartCall(ctx context.Context, workspaceID, campaignID, leadID string) (telephony.PlaceCallResult, error) {
	lead, err := d.leads.Get(ctx, workspaceID, leadID)
	if err != nil {
		return telephony.PlaceCallResult{}, err
	}
	if !lead.Callable() {
		return telephony.PlaceCallResult{}, ErrLeadNotCallable
	}
	if lead.NextContactAt != nil && time.Now().UTC().Before(*lead.NextContactAt) {
		return telephony.PlaceCallResult{}, ErrNotDue
	}

	camp, err := d.campaigns.Get(ctx, workspaceID, campaignID)
	if err != nil {
		return telephony.PlaceCallResult{}, err
	}
	if camp.Retry.MaxAttempts > 0 && lead.Attempts >= camp.Retry.MaxAttempts {
		return telephony.PlaceCallResult{}, ErrLeadNotCallable
	}

	acquired, err := d.acquireSlot(ctx, workspaceID)
	if err != nil {
		return telephony.PlaceCallResult{}, err
	}
	if !acquired {
		return telephony.PlaceCallResult{}, ErrCapacityFull
	}

	res, err := d.provider.PlaceCall(ctx, telephony.PlaceCallRequest{
		WorkspaceID:      workspaceID,
		To:               lead.Phone,
		From:             camp.CallerNumber,
		AnswerURL:        d.cfg.PublicBaseURL + "/webhooks/twilio/answer",
		StatusURL:        d.cfg.PublicBaseURL + "/webhooks/twilio/status",
		MachineDetection: true,
		Metadata:         fmt.Sprintf(`{"campaign_id":%q,"lead_id":%q}`, campaignID, leadID),
	})
	if err != nil {
		d.ReleaseSlot(ctx, workspaceID)
		return telephony.PlaceCallResult{}, err
	}

	d.pending.Register(res.ProviderCallID, lead, camp, res.PlacedAt)
	d.log.Info("call placed",
		"call_id", res.ProviderCallID,
		"workspace_id", workspaceID,
		"campaign_id", campaignID,
		"lead_id", leadID,
	)
	return res, nil
}

func (d *Dialer) acquireSlot(ctx context.Context, workspaceID string) (bool, error) {
	if d.rdb == nil {
		return true, nil
	}
	return utils.AcquireCallSlot(ctx, d.rdb, utils.CallSlotKey(workspaceID), d.cfg.MaxLiveCalls, d.cfg.SlotTTL)
}

// ReleaseSlot frees one live-call slot for the workspace. Wired into the
// status webhook handler so slots return when calls end.
func (d *Dialer) ReleaseSlot(ctx context.Context, workspaceID string) {
	if d.rdb == nil {
		return
	}
	if err := utils.ReleaseCallSlot(ctx, d.rdb, utils.CallSlotKey(workspaceID)); err != nil {
		d.log.Warn("call slot release failed", "workspace_id", workspaceID, "err", err)
	}
}

// Pending exposes the placement registry for webhook wiring.
func (d *Dialer) Pending() *PendingCalls { return d.pending }

// ReapStale releases slots for placements that never produced a webhook.
// Run periodically; the redis TTL is the backstop if this misses.
func (d *Dialer) ReapStale(ctx context.Context, maxAge time.Duration) {
	for _, id := range d.pending.Expired(time.Now().UTC(), maxAge) {
		lead, _, ok := d.pending.Resolve(id)
		if !ok || !d.pending.Discard(id) {
			continue
		}
		d.ReleaseSlot(ctx, lead.WorkspaceID)
		d.log.Warn("stale placement reaped", "call_id", id, "workspace_id", lead.WorkspaceID)
	}
}
