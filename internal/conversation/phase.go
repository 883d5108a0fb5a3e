package conversation

import "strings"

// Phase is a best-effort label for where in the conversational arc a call
// sits. It is a heuristic progress indicator, not an enforced state machine:
// transitions can move backwards and are never validated.
type Phase string

const (
	PhaseOpening       Phase = "opening"
	PhaseQualification Phase = "qualification"
	PhasePresentation  Phase = "presentation"
	PhaseObjection     Phase = "objection"
	PhaseClosing       Phase = "closing"
)

// Keyword buckets checked in fixed priority order. The first bucket with any
// match in the lowercased agent utterance wins.
var phaseBuckets = []struct {
	phase    Phase
	keywords []string
}{
	{PhaseQualification, []string{
		"budget",
		"how many",
		"currently using",
		"who handles",
		"decision",
		"tell me about your",
	}},
	{PhasePresentation, []string{
		"we offer",
		"our solution",
		"our platform",
		"features",
		"benefit",
		"let me explain",
	}},
	{PhaseObjection, []string{
		"understand your concern",
		"i hear you",
		"fair point",
		"that said",
		"however",
	}},
	{PhaseClosing, []string{
		"schedule",
		"next step",
		"follow up",
		"send you",
		"book a",
		"sign up",
	}},
}

// ClassifyPhase maps an agent utterance to a phase. On no match the current
// phase is retained rather than reset to opening.
func ClassifyPhase(current Phase, agentUtterance string) Phase {
	s := strings.ToLower(agentUtterance)
	for _, bucket := range phaseBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(s, kw) {
				return bucket.phase
			}
		}
	}
	return current
}
