package calls

import "time"

// Speaker identifies which party produced a transcript turn.
type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
)

// Turn is one utterance in a call transcript. Immutable once appended;
// ordering is insertion order and is never rewritten.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Outcome is the terminal classification of a finished call.
// It is the field campaigns score leads on.
type Outcome string

const (
	OutcomeSale          Outcome = "sale"
	OutcomeInterested    Outcome = "interested"
	OutcomeNotInterested Outcome = "not-interested"
	OutcomeCallback      Outcome = "callback"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeWrongNumber   Outcome = "wrong-number"
	OutcomeNoAnswer      Outcome = "no-answer"
)

// EndReason records what triggered termination. Distinct from Outcome:
// the reason is retained for audit even though only the outcome feeds scoring.
type EndReason string

const (
	EndReasonCustomerRequested EndReason = "customer-requested"
	EndReasonProviderCompleted EndReason = "provider-signaled-completion"
	EndReasonProviderFailed    EndReason = "provider-signaled-failure"
	EndReasonOperatorAction    EndReason = "manual-operator-action"
)

// Sentiment is an overall polarity score for a finished transcript.
// Polarity is in [-1, 1]; Confidence in [0, 1].
type Sentiment struct {
	Polarity   float64 `json:"polarity"`
	Confidence float64 `json:"confidence"`
}

// Signals are structured facts heuristically extracted from a transcript.
// Every field is optional; consumers must tolerate the zero value.
type Signals struct {
	Budget        string   `json:"budget,omitempty"`
	Timeline      string   `json:"timeline,omitempty"`
	DecisionMaker *bool    `json:"decision_maker,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	Objections    []string `json:"objections,omitempty"`
	NextSteps     string   `json:"next_steps,omitempty"`
}

// Empty reports whether no signal field was extracted at all.
func (s Signals) Empty() bool {
	return s.Budget == "" && s.Timeline == "" && s.DecisionMaker == nil &&
		len(s.Interests) == 0 && len(s.Objections) == 0 && s.NextSteps == ""
}

// CallRecord is the immutable persisted result of one completed call.
//
// Multi-tenant invariant: WorkspaceID is required on every row.
// Exactly one record exists per finalized call_id.
type CallRecord struct {
	CallID      string `json:"call_id" db:"call_id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	LeadID      string `json:"lead_id" db:"lead_id"`
	CampaignID  string `json:"campaign_id" db:"campaign_id"`

	Outcome   Outcome   `json:"outcome" db:"outcome"`
	EndReason EndReason `json:"end_reason" db:"end_reason"`

	Sentiment  Sentiment `json:"sentiment" db:"sentiment"`
	Signals    Signals   `json:"signals" db:"signals"`
	Summary    string    `json:"summary,omitempty" db:"summary"`
	Transcript []Turn    `json:"transcript" db:"transcript"`

	StartedAt time.Time `json:"started_at" db:"started_at"`
	EndedAt   time.Time `json:"ended_at" db:"ended_at"`
}

// DurationSeconds is derived from the start/end stamps.
func (r CallRecord) DurationSeconds() int {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return int(r.EndedAt.Sub(r.StartedAt).Seconds())
}

// CustomerTurns counts customer utterances in a transcript.
func CustomerTurns(transcript []Turn) int {
	n := 0
	for _, t := range transcript {
		if t.Speaker == SpeakerCustomer {
			n++
		}
	}
	return n
}
