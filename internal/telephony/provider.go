package telephony

import (
	"context"
	"time"
)

// Provider defines the provider-agnostic interface used by business logic.
//
// Rules:
// - No provider SDK calls outside telephony adapters.
// - All requests must be workspace-scoped (workspace_id required).
// - Keep request/response types provider-agnostic; stash provider raw
//   payloads in Metadata if needed.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	// PlaceCall starts an outbound call. The provider will hit AnswerURL
	// with a voice webhook when the callee picks up, and StatusURL with
	// lifecycle callbacks.
	PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error)

	// Hangup tears down a live call (operator-initiated).
	Hangup(ctx context.Context, providerCallID string) error
}

type PlaceCallRequest struct {
	WorkspaceID string `json:"workspace_id"`

	// To and From are E.164.
	To   string `json:"to"`
	From string `json:"from"`

	AnswerURL string `json:"answer_url"`
	StatusURL string `json:"status_url"`

	// MachineDetection asks the provider to flag answering machines.
	MachineDetection bool `json:"machine_detection"`

	// Metadata is optional JSON for debugging/audit.
	Metadata string `json:"metadata,omitempty"`
}

type PlaceCallResult struct {
	WorkspaceID string `json:"workspace_id"`

	// ProviderCallID is the provider's unique identifier for this call.
	// It is the call_id used for all per-call state.
	ProviderCallID string `json:"provider_call_id"`

	PlacedAt time.Time `json:"placed_at"`
}
