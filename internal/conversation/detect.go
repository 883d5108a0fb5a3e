package conversation

import "strings"

// Intent is the category of termination request detected in customer speech.
type Intent string

const (
	IntentRemoval     Intent = "removal-request"
	IntentUnsubscribe Intent = "unsubscribe"
	IntentDisinterest Intent = "disinterest"
	IntentWrongNumber Intent = "wrong-number"
	IntentGoodbye     Intent = "goodbye"
)

// Termination vocabulary, checked in order. Phrases are multi-word and
// anchored so substrings of benign speech ("I'm interested", "maybe") cannot
// match. False negatives are acceptable; the conversation just continues.
var terminationVocab = []struct {
	intent  Intent
	phrases []string
}{
	{IntentRemoval, []string{
		"remove me",
		"take me off",
		"don't call me",
		"do not call me",
		"stop calling",
		"never call",
	}},
	{IntentUnsubscribe, []string{
		"unsubscribe",
		"opt me out",
		"opt out",
	}},
	{IntentWrongNumber, []string{
		"wrong number",
		"no one by that name",
		"nobody by that name",
		"you have the wrong",
	}},
	{IntentDisinterest, []string{
		"not interested",
		"no thank you",
		"no thanks",
		"not for me",
	}},
	{IntentGoodbye, []string{
		"goodbye",
		"hanging up",
		"hang up now",
		"bye now",
	}},
}

// DetectTermination classifies whether a customer utterance signals the
// customer wants to end the engagement. Pure function: case-insensitive
// substring match against the fixed vocabulary, first match wins.
func DetectTermination(utterance string) (Intent, bool) {
	s := strings.ToLower(utterance)
	for _, bucket := range terminationVocab {
		for _, p := range bucket.phrases {
			if strings.Contains(s, p) {
				return bucket.intent, true
			}
		}
	}
	return "", false
}

// ShouldEnd reports only the boolean decision.
func ShouldEnd(utterance string) bool {
	_, end := DetectTermination(utterance)
	return end
}
