package conversation

import (
	"context"
	"log/slog"
	"time"

	"voicereach/internal/calls"
	"voicereach/internal/campaigns"
	"voicereach/internal/leads"
)

// ResponseGenerator produces the agent's side of the conversation and the
// post-call analysis. Implementations live at the edge (internal/llm); the
// orchestrator only depends on this contract.
type ResponseGenerator interface {
	NextUtterance(ctx context.Context, transcript []calls.Turn, cc CallContext, camp campaigns.Campaign) (string, error)
	ScoreSentiment(ctx context.Context, transcript []calls.Turn) (calls.Sentiment, error)
	ExtractSignals(ctx context.Context, transcript []calls.Turn, goals []string) (calls.Signals, error)
	Summarize(ctx context.Context, transcript []calls.Turn, outcome calls.Outcome) (string, error)
}

// RecordStore persists finished call records.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec calls.CallRecord) error
}

// FeedbackApplier pushes a finished call's outcome onto the lead record.
type FeedbackApplier interface {
	Apply(ctx context.Context, lead *leads.Lead, outcome calls.Outcome, sig calls.Signals, sent calls.Sentiment) error
}

// ProviderSignal is a call-lifecycle event from the telephony transport that
// ends a call outside conversational flow.
type ProviderSignal string

const (
	SignalCompleted       ProviderSignal = "completed"
	SignalBusy            ProviderSignal = "busy"
	SignalFailed          ProviderSignal = "failed"
	SignalNoAnswer        ProviderSignal = "no-answer"
	SignalMachineAnswered ProviderSignal = "machine-answered"
	SignalOperatorHangup  ProviderSignal = "operator-hangup"
)

// Reply is the orchestrator's answer to a customer turn.
type Reply struct {
	Text string
	// EndOfCall is set when Text is a closing line and the transport
	// should hang up after playback instead of gathering more speech.
	EndOfCall bool
}

const defaultClosingLine = "Understood, I'll take you off our list. Sorry to have bothered you, and have a good day."

// Neutral clarifying lines used when the response generator fails.
// Selection is deterministic on transcript length so retries are stable.
var fallbackUtterances = []string{
	"I see. Could you tell me a bit more about that?",
	"Sorry, could you say that again for me?",
	"Got it. What would be most helpful for you right now?",
}

// Orchestrator owns the lifecycle of every live call: one state per call id,
// operations serialized per call, full parallelism across calls.
type Orchestrator struct {
	registry Registry
	gen      ResponseGenerator
	records  RecordStore
	feedback FeedbackApplier
	log      *slog.Logger

	// clock is injectable for deterministic tests.
	clock func() time.Time

	// OnFeedbackFailure, if set, receives records whose lead update failed
	// after the call record was already persisted, so a retry worker can
	// pick them up. The call record itself is never rolled back.
	OnFeedbackFailure func(rec calls.CallRecord, err error)
}

func NewOrchestrator(reg Registry, gen ResponseGenerator, records RecordStore, feedback FeedbackApplier, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		registry: reg,
		gen:      gen,
		records:  records,
		feedback: feedback,
		log:      log,
		clock:    time.Now,
	}
}

// Initialize creates state for a freshly connected call and returns the
// opening line to speak. Fails with ErrDuplicateCall if the call id is
// already active.
func (o *Orchestrator) Initialize(ctx context.Context, callID string, lead leads.Lead, camp campaigns.Campaign) (string, error) {
	now := o.clock().UTC()
	st := newConversationState(callID, lead, camp, now)

	if err := o.registry.Create(st); err != nil {
		st.cancel()
		return "", err
	}

	opening := RenderScript(camp.OpeningScript, lead)
	st.mu.Lock()
	st.Transcript.Append(calls.Turn{Speaker: calls.SpeakerAgent, Text: opening, At: now})
	st.mu.Unlock()

	o.log.Info("call initialized",
		"call_id", callID,
		"lead_id", lead.LeadID,
		"campaign_id", camp.CampaignID,
		"attempt", st.Context.Attempt,
	)
	return opening, nil
}

// OnCustomerTurn records a customer utterance and produces the agent's reply.
//
// The per-call lock is released while the generator call is in flight so a
// provider hangup can land in the meantime; the state is re-checked before
// the agent turn is appended and a late response is discarded.
func (o *Orchestrator) OnCustomerTurn(ctx context.Context, callID, utterance string) (Reply, error) {
	st, ok := o.registry.Get(callID)
	if !ok {
		return Reply{}, ErrUnknownCall
	}

	st.mu.Lock()
	if st.Status != StatusActive {
		st.mu.Unlock()
		return Reply{}, ErrCallEnded
	}
	now := o.clock().UTC()
	st.Transcript.Append(calls.Turn{Speaker: calls.SpeakerCustomer, Text: utterance, At: now})

	if intent, end := DetectTermination(utterance); end {
		if intent == IntentWrongNumber {
			st.Hints.WrongNumber = true
		}
		st.end(calls.EndReasonCustomerRequested, now)
		closing := st.Campaign.ClosingScript
		if closing == "" {
			closing = defaultClosingLine
		}
		st.Transcript.Append(calls.Turn{Speaker: calls.SpeakerAgent, Text: closing, At: now})
		st.mu.Unlock()
		o.log.Info("call ended by customer", "call_id", callID, "intent", string(intent))
		return Reply{Text: closing, EndOfCall: true}, nil
	}

	snapshot := st.Transcript.All()
	cc := st.Context
	camp := st.Campaign
	genCtx := st.ctx
	turnsBefore := len(snapshot)
	st.mu.Unlock()

	text, err := o.gen.NextUtterance(genCtx, snapshot, cc, camp)
	if err != nil {
		// Generator failure is recovered locally; the customer hears a
		// neutral clarifying line, never an error.
		text = fallbackUtterances[turnsBefore%len(fallbackUtterances)]
		o.log.Warn("generator failed, using fallback", "call_id", callID, "err", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Status != StatusActive || st.Transcript.Len() != turnsBefore {
		// The call ended while we were waiting; drop the late response so
		// no agent turn lands after the end marker.
		o.log.Info("discarding late generator response", "call_id", callID)
		return Reply{}, ErrCallEnded
	}

	st.Transcript.Append(calls.Turn{Speaker: calls.SpeakerAgent, Text: text, At: o.clock().UTC()})
	st.Phase = ClassifyPhase(st.Phase, text)
	return Reply{Text: text}, nil
}

// OnProviderSignal ends a call in response to a transport lifecycle event.
// Signals for already-ended calls are no-ops; signals for unknown calls are
// rejected.
func (o *Orchestrator) OnProviderSignal(ctx context.Context, callID string, sig ProviderSignal) error {
	st, ok := o.registry.Get(callID)
	if !ok {
		return ErrUnknownCall
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Status == StatusEnded {
		return nil
	}

	reason := calls.EndReasonProviderCompleted
	switch sig {
	case SignalBusy, SignalFailed, SignalNoAnswer:
		reason = calls.EndReasonProviderFailed
	case SignalMachineAnswered:
		st.Hints.Voicemail = true
	case SignalOperatorHangup:
		reason = calls.EndReasonOperatorAction
	}
	st.end(reason, o.clock().UTC())
	o.log.Info("call ended by signal", "call_id", callID, "signal", string(sig), "reason", string(reason))
	return nil
}

// Finalize resolves the outcome of an ended call, persists the record,
// applies lead feedback and removes the state from memory. Calling it again
// after it succeeded is a no-op.
func (o *Orchestrator) Finalize(ctx context.Context, callID string) (calls.CallRecord, error) {
	st, ok := o.registry.Get(callID)
	if !ok {
		// Already finalized (or never existed); nothing to re-run.
		return calls.CallRecord{}, nil
	}

	st.mu.Lock()
	if st.Status != StatusEnded {
		st.mu.Unlock()
		return calls.CallRecord{}, ErrNotEnded
	}
	if st.finalizing {
		st.mu.Unlock()
		return calls.CallRecord{}, nil
	}
	st.finalizing = true
	snapshot := st.Transcript.All()
	lead := st.Lead
	camp := st.Campaign
	reason := st.EndReason
	hints := st.Hints
	startedAt, endedAt := st.StartedAt, st.EndedAt
	st.mu.Unlock()

	sentiment, err := o.gen.ScoreSentiment(ctx, snapshot)
	if err != nil {
		o.log.Warn("sentiment scoring failed, using neutral default", "call_id", callID, "err", err)
		sentiment = calls.Sentiment{}
	}
	signals, err := o.gen.ExtractSignals(ctx, snapshot, camp.Goals)
	if err != nil {
		o.log.Warn("signal extraction failed, using empty signals", "call_id", callID, "err", err)
		signals = calls.Signals{}
	}

	outcome, rule := ResolveOutcomeRule(ResolveInput{
		Transcript: snapshot,
		Signals:    signals,
		EndReason:  reason,
		Hints:      hints,
	})

	summary, err := o.gen.Summarize(ctx, snapshot, outcome)
	if err != nil {
		o.log.Warn("summary generation failed", "call_id", callID, "err", err)
		summary = ""
	}

	rec := calls.CallRecord{
		CallID:      callID,
		WorkspaceID: camp.WorkspaceID,
		LeadID:      lead.LeadID,
		CampaignID:  camp.CampaignID,
		Outcome:     outcome,
		EndReason:   reason,
		Sentiment:   sentiment,
		Signals:     signals,
		Summary:     summary,
		Transcript:  snapshot,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}

	if err := o.records.SaveRecord(ctx, rec); err != nil {
		// Retryable: leave state in place so a later Finalize attempt can
		// persist; the finalizing flag is cleared to allow that.
		st.mu.Lock()
		st.finalizing = false
		st.mu.Unlock()
		return calls.CallRecord{}, err
	}

	if err := o.feedback.Apply(ctx, &lead, outcome, signals, sentiment); err != nil {
		// The call record stands; lead state catches up on retry.
		o.log.Error("lead feedback failed after finalize", "call_id", callID, "lead_id", lead.LeadID, "err", err)
		if o.OnFeedbackFailure != nil {
			o.OnFeedbackFailure(rec, err)
		}
	}

	o.registry.Remove(callID)
	o.log.Info("call finalized",
		"call_id", callID,
		"outcome", string(outcome),
		"rule", rule,
		"end_reason", string(reason),
		"turns", len(snapshot),
	)
	return rec, nil
}

// ActiveCalls reports how many calls currently hold state.
func (o *Orchestrator) ActiveCalls() int { return o.registry.Len() }
