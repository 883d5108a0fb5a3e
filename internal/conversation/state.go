package conversation

import (
	"context"
	"sync"
	"time"

	"voicereach/internal/calls"
	"voicereach/internal/campaigns"
	"voicereach/internal/leads"
)

// Status is the explicit lifecycle state of a conversation. A call that is
// not in the registry is uninitialized (or already finalized); illegal
// transitions are guarded on the value itself, not inferred from map absence.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// ConversationState is the mutable aggregate root for one live call.
// The lead and campaign snapshots are exclusively owned by this state for
// the call's lifetime.
//
// All fields are guarded by mu. The orchestrator serializes operations per
// call through it while distinct calls proceed in parallel.
type ConversationState struct {
	mu sync.Mutex

	CallID   string
	Lead     leads.Lead
	Campaign campaigns.Campaign

	Transcript *Transcript
	Phase      Phase
	Context    CallContext

	Status    Status
	EndReason calls.EndReason
	Hints     Hints

	StartedAt time.Time
	EndedAt   time.Time

	// finalizing guards against double-finalization races.
	finalizing bool

	// ctx is canceled when the call ends so in-flight generator requests
	// are interrupted instead of racing a hangup.
	ctx    context.Context
	cancel context.CancelFunc
}

func newConversationState(callID string, lead leads.Lead, camp campaigns.Campaign, now time.Time) *ConversationState {
	ctx, cancel := context.WithCancel(context.Background())
	return &ConversationState{
		CallID:     callID,
		Lead:       lead,
		Campaign:   camp,
		Transcript: NewTranscript(),
		Phase:      PhaseOpening,
		Context:    NewCallContext(lead, now),
		Status:     StatusActive,
		StartedAt:  now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// end transitions to ended exactly once. Caller must hold mu.
func (s *ConversationState) end(reason calls.EndReason, now time.Time) {
	if s.Status == StatusEnded {
		return
	}
	s.Status = StatusEnded
	s.EndReason = reason
	s.EndedAt = now
	s.cancel()
}

// Registry tracks active conversation state by call id. It is injected into
// the orchestrator so tests can substitute their own.
//
// Invariant: exactly one state exists per live call id.
type Registry interface {
	Get(callID string) (*ConversationState, bool)
	Create(st *ConversationState) error
	Remove(callID string)
	Len() int
}

// MemoryRegistry is the single-process Registry implementation.
type MemoryRegistry struct {
	mu     sync.RWMutex
	states map[string]*ConversationState
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{states: map[string]*ConversationState{}}
}

func (r *MemoryRegistry) Get(callID string) (*ConversationState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[callID]
	return st, ok
}

func (r *MemoryRegistry) Create(st *ConversationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.states[st.CallID]; exists {
		return ErrDuplicateCall
	}
	r.states[st.CallID] = st
	return nil
}

func (r *MemoryRegistry) Remove(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, callID)
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
