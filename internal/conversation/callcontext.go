package conversation

import (
	"time"

	"voicereach/internal/leads"
)

// CallContext is a read-only snapshot computed once at call initialization
// and handed to the response generator with every turn.
type CallContext struct {
	// Attempt is which call attempt this is for the lead (1-based).
	Attempt int `json:"attempt"`
	// TimeOfDay is a coarse bucket: morning, afternoon or evening.
	TimeOfDay string `json:"time_of_day"`
}

func NewCallContext(lead leads.Lead, now time.Time) CallContext {
	return CallContext{
		Attempt:   lead.Attempts + 1,
		TimeOfDay: timeOfDayBucket(now),
	}
}

func timeOfDayBucket(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}
