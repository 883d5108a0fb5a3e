package conversation

import (
	"strings"

	"voicereach/internal/calls"
)

// Hints carry end-of-call facts that the rule table needs but that are not
// derivable from the transcript or extracted signals alone: the termination
// detector's wrong-number intent and the provider's machine-answer detection.
type Hints struct {
	WrongNumber bool
	Voicemail   bool
}

// ResolveInput is everything the outcome resolver sees.
type ResolveInput struct {
	Transcript []calls.Turn
	Signals    calls.Signals
	EndReason  calls.EndReason
	Hints      Hints
}

type outcomeRule struct {
	name    string
	applies func(ResolveInput) bool
	outcome calls.Outcome
}

// The resolver is a layered heuristic: an ordered table of named rules, first
// match wins. The callback rule is deliberately ordered before the interested
// rule so an extracted next-step that asks for a callback is not swallowed by
// the generic interest rule.
var outcomeRules = []outcomeRule{
	{
		name:    "wrong-number-intent",
		applies: func(in ResolveInput) bool { return in.Hints.WrongNumber },
		outcome: calls.OutcomeWrongNumber,
	},
	{
		name:    "machine-answered",
		applies: func(in ResolveInput) bool { return in.Hints.Voicemail },
		outcome: calls.OutcomeVoicemail,
	},
	{
		name:    "customer-ended-call",
		applies: func(in ResolveInput) bool { return in.EndReason == calls.EndReasonCustomerRequested },
		outcome: calls.OutcomeNotInterested,
	},
	{
		name:    "provider-reported-failure",
		applies: func(in ResolveInput) bool { return in.EndReason == calls.EndReasonProviderFailed },
		outcome: calls.OutcomeNoAnswer,
	},
	{
		name:    "purchase-next-step",
		applies: func(in ResolveInput) bool { return mentionsAny(in.Signals.NextSteps, "purchase", "buy", "contract", "sign up") },
		outcome: calls.OutcomeSale,
	},
	{
		name:    "callback-requested",
		applies: func(in ResolveInput) bool { return mentionsAny(in.Signals.NextSteps, "call back", "callback", "call again", "call me later") },
		outcome: calls.OutcomeCallback,
	},
	{
		name: "signals-present",
		applies: func(in ResolveInput) bool {
			return in.Signals.NextSteps != "" || len(in.Signals.Interests) > 0
		},
		outcome: calls.OutcomeInterested,
	},
	{
		name:    "too-few-customer-turns",
		applies: func(in ResolveInput) bool { return calls.CustomerTurns(in.Transcript) < 2 },
		outcome: calls.OutcomeNoAnswer,
	},
	{
		name:    "engaged-conversation",
		applies: func(in ResolveInput) bool { return calls.CustomerTurns(in.Transcript) > 5 },
		outcome: calls.OutcomeInterested,
	},
}

// ResolveOutcome produces exactly one terminal label for a finished call.
func ResolveOutcome(in ResolveInput) calls.Outcome {
	outcome, _ := ResolveOutcomeRule(in)
	return outcome
}

// ResolveOutcomeRule additionally reports which named rule fired, for logging.
func ResolveOutcomeRule(in ResolveInput) (calls.Outcome, string) {
	for _, r := range outcomeRules {
		if r.applies(in) {
			return r.outcome, r.name
		}
	}
	return calls.OutcomeNotInterested, "default"
}

func mentionsAny(s string, terms ...string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
