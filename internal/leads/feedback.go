package leads

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"voicereach/internal/calls"
)

// Score deltas per outcome. Outcomes missing from the table fall back to
// defaultScoreDelta (voicemail, no-answer).
var scoreDeltas = map[calls.Outcome]int{
	calls.OutcomeSale:          30,
	calls.OutcomeInterested:    20,
	calls.OutcomeCallback:      10,
	calls.OutcomeNotInterested: -15,
	calls.OutcomeWrongNumber:   -30,
}

const defaultScoreDelta = -5

// Sentiment polarity beyond this magnitude nudges the score by +-5.
const sentimentNudgeThreshold = 0.2

// Updater applies a finished call's outcome back onto the lead record.
//
// Failure semantics: callers must treat an Apply error as retryable and never
// roll back the already-finalized call record because of it.
type Updater struct {
	store Store
	log   *slog.Logger

	// clock is injectable for deterministic tests.
	clock func() time.Time

	// CallbackHour is the local hour callbacks are scheduled at.
	CallbackHour int
	// InterestedDelay is how long to wait before re-contacting an
	// interested lead.
	InterestedDelay time.Duration
}

func NewUpdater(store Store, log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{
		store:           store,
		log:             log,
		clock:           time.Now,
		CallbackHour:    10,
		InterestedDelay: 72 * time.Hour,
	}
}

// Apply mutates the lead in place per the outcome delta table and persists it.
func (u *Updater) Apply(ctx context.Context, lead *Lead, outcome calls.Outcome, sig calls.Signals, sent calls.Sentiment) error {
	if lead == nil || lead.LeadID == "" {
		return ErrInvalidArgument
	}
	now := u.clock().UTC()

	delta, ok := scoreDeltas[outcome]
	if !ok {
		delta = defaultScoreDelta
	}
	if sent.Polarity > sentimentNudgeThreshold {
		delta += 5
	} else if sent.Polarity < -sentimentNudgeThreshold {
		delta -= 5
	}
	lead.Score = clampScore(lead.Score + delta)

	lead.Status = statusFor(outcome)
	if outcome == calls.OutcomeWrongNumber {
		lead.DoNotCall = true
	}

	lead.Interests = append(lead.Interests, sig.Interests...)
	lead.Objections = append(lead.Objections, sig.Objections...)

	lead.Attempts++
	lead.LastContactAt = &now

	switch outcome {
	case calls.OutcomeCallback:
		next := nextBusinessDayAt(now, u.CallbackHour)
		lead.NextContactAt = &next
	case calls.OutcomeInterested:
		next := now.Add(u.InterestedDelay)
		lead.NextContactAt = &next
	}

	lead.UpdatedAt = now

	if err := u.store.Update(ctx, *lead); err != nil {
		u.log.Error("lead feedback persist failed",
			"lead_id", lead.LeadID,
			"outcome", string(outcome),
			"err", err,
		)
		return fmt.Errorf("leads: apply feedback: %w", err)
	}
	return nil
}

func statusFor(outcome calls.Outcome) Status {
	switch outcome {
	case calls.OutcomeSale:
		return StatusConverted
	case calls.OutcomeInterested:
		return StatusInterested
	case calls.OutcomeCallback:
		return StatusCallback
	case calls.OutcomeNotInterested:
		return StatusNotInterested
	case calls.OutcomeWrongNumber:
		return StatusInvalidNumber
	case calls.OutcomeVoicemail, calls.OutcomeNoAnswer:
		return StatusUnreachable
	default:
		return StatusContacted
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// nextBusinessDayAt returns the next weekday at the given hour, UTC.
func nextBusinessDayAt(now time.Time, hour int) time.Time {
	d := now.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}
