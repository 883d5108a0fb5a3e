package conversation

import (
	"testing"

	"voicereach/internal/calls"
)

func turnsWithCustomers(n int) []calls.Turn {
	out := []calls.Turn{{Speaker: calls.SpeakerAgent, Text: "hello"}}
	for i := 0; i < n; i++ {
		out = append(out, calls.Turn{Speaker: calls.SpeakerCustomer, Text: "yes"})
		out = append(out, calls.Turn{Speaker: calls.SpeakerAgent, Text: "go on"})
	}
	return out
}

func TestResolveOutcome(t *testing.T) {
	cases := []struct {
		name string
		in   ResolveInput
		want calls.Outcome
		rule string
	}{
		{
			name: "customer requested end with empty transcript",
			in:   ResolveInput{EndReason: calls.EndReasonCustomerRequested},
			want: calls.OutcomeNotInterested,
			rule: "customer-ended-call",
		},
		{
			name: "six customer turns and no signals",
			in:   ResolveInput{Transcript: turnsWithCustomers(6), EndReason: calls.EndReasonProviderCompleted},
			want: calls.OutcomeInterested,
			rule: "engaged-conversation",
		},
		{
			name: "one customer turn and no signals",
			in:   ResolveInput{Transcript: turnsWithCustomers(1), EndReason: calls.EndReasonProviderCompleted},
			want: calls.OutcomeNoAnswer,
			rule: "too-few-customer-turns",
		},
		{
			name: "wrong number hint beats everything",
			in: ResolveInput{
				Transcript: turnsWithCustomers(6),
				EndReason:  calls.EndReasonCustomerRequested,
				Hints:      Hints{WrongNumber: true},
			},
			want: calls.OutcomeWrongNumber,
			rule: "wrong-number-intent",
		},
		{
			name: "voicemail hint",
			in:   ResolveInput{EndReason: calls.EndReasonProviderCompleted, Hints: Hints{Voicemail: true}},
			want: calls.OutcomeVoicemail,
			rule: "machine-answered",
		},
		{
			name: "provider failure maps to no-answer",
			in:   ResolveInput{Transcript: turnsWithCustomers(3), EndReason: calls.EndReasonProviderFailed},
			want: calls.OutcomeNoAnswer,
			rule: "provider-reported-failure",
		},
		{
			name: "callback next step wins over generic interest",
			in: ResolveInput{
				Transcript: turnsWithCustomers(3),
				EndReason:  calls.EndReasonProviderCompleted,
				Signals:    calls.Signals{NextSteps: "call back next Tuesday", Interests: []string{"pricing"}},
			},
			want: calls.OutcomeCallback,
			rule: "callback-requested",
		},
		{
			name: "purchase next step resolves to sale",
			in: ResolveInput{
				Transcript: turnsWithCustomers(3),
				EndReason:  calls.EndReasonProviderCompleted,
				Signals:    calls.Signals{NextSteps: "send contract to sign up"},
			},
			want: calls.OutcomeSale,
			rule: "purchase-next-step",
		},
		{
			name: "interests without next steps resolve to interested",
			in: ResolveInput{
				Transcript: turnsWithCustomers(3),
				EndReason:  calls.EndReasonProviderCompleted,
				Signals:    calls.Signals{Interests: []string{"automation"}},
			},
			want: calls.OutcomeInterested,
			rule: "signals-present",
		},
		{
			name: "middling call with no signals defaults to not-interested",
			in:   ResolveInput{Transcript: turnsWithCustomers(3), EndReason: calls.EndReasonProviderCompleted},
			want: calls.OutcomeNotInterested,
			rule: "default",
		},
		{
			name: "operator hangup mid-conversation",
			in:   ResolveInput{Transcript: turnsWithCustomers(4), EndReason: calls.EndReasonOperatorAction},
			want: calls.OutcomeNotInterested,
			rule: "default",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, rule := ResolveOutcomeRule(tc.in)
			if got != tc.want {
				t.Fatalf("outcome = %q, want %q (rule %q)", got, tc.want, rule)
			}
			if rule != tc.rule {
				t.Fatalf("rule = %q, want %q", rule, tc.rule)
			}
		})
	}
}
