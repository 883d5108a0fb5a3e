package conversation

import "testing"

func TestClassifyPhase(t *testing.T) {
	cases := []struct {
		name      string
		current   Phase
		utterance string
		want      Phase
	}{
		{"qualification keyword", PhaseOpening, "What's your budget for this quarter?", PhaseQualification},
		{"presentation keyword", PhaseQualification, "We offer a managed onboarding service.", PhasePresentation},
		{"objection keyword", PhasePresentation, "I understand your concern about migration.", PhaseObjection},
		{"closing keyword", PhaseObjection, "Shall we schedule a demo for Thursday?", PhaseClosing},
		{"case insensitive", PhaseOpening, "WE OFFER two plans.", PhasePresentation},
		{"no match retains current", PhasePresentation, "That is a lovely dog you have.", PhasePresentation},
		{"no match does not reset to opening", PhaseClosing, "Right.", PhaseClosing},
		{"priority order picks first bucket", PhaseOpening, "Our budget-friendly features help.", PhaseQualification},
		{"non-monotonic move allowed", PhaseClosing, "Who handles purchasing on your side?", PhaseQualification},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyPhase(tc.current, tc.utterance); got != tc.want {
				t.Fatalf("ClassifyPhase(%q, %q) = %q, want %q", tc.current, tc.utterance, got, tc.want)
			}
		})
	}
}
