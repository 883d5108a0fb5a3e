package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// Twilio voice webhook forms. Twilio posts application/x-www-form-urlencoded;
// only the fields this service consumes are captured.
// Ref: https://www.twilio.com/docs/voice/twiml

// AnswerForm is the webhook fired when the callee picks up.
type AnswerForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	CallStatus string
	// AnsweredBy is populated when machine detection is enabled:
	// "human", "machine_start", "machine_end_beep", "fax", "unknown".
	AnsweredBy string
}

// SpeechForm is the Gather result carrying the customer's transcribed speech.
type SpeechForm struct {
	CallSid      string
	SpeechResult string
	// Confidence is 0..1; 0 when Twilio omits it.
	Confidence float64
}

// StatusForm is the lifecycle status callback.
type StatusForm struct {
	CallSid         string
	CallStatus      string
	AnsweredBy      string
	CallDurationSec int
}

func ParseAnswerForm(r *http.Request) (AnswerForm, error) {
	if err := r.ParseForm(); err != nil {
		return AnswerForm{}, err
	}
	return AnswerForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       strings.TrimSpace(r.PostFormValue("From")),
		To:         strings.TrimSpace(r.PostFormValue("To")),
		CallStatus: r.PostFormValue("CallStatus"),
		AnsweredBy: r.PostFormValue("AnsweredBy"),
	}, nil
}

func ParseSpeechForm(r *http.Request) (SpeechForm, error) {
	if err := r.ParseForm(); err != nil {
		return SpeechForm{}, err
	}
	f := SpeechForm{
		CallSid:      r.PostFormValue("CallSid"),
		SpeechResult: strings.TrimSpace(r.PostFormValue("SpeechResult")),
	}
	if v := r.PostFormValue("Confidence"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			f.Confidence = c
		}
	}
	return f, nil
}

func ParseStatusForm(r *http.Request) (StatusForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusForm{}, err
	}
	f := StatusForm{
		CallSid:    r.PostFormValue("CallSid"),
		CallStatus: r.PostFormValue("CallStatus"),
		AnsweredBy: r.PostFormValue("AnsweredBy"),
	}
	if v := r.PostFormValue("CallDuration"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.CallDurationSec = n
		}
	}
	return f, nil
}

// MachineAnswered reports whether machine detection flagged a non-human.
func MachineAnswered(answeredBy string) bool {
	return strings.HasPrefix(answeredBy, "machine") || answeredBy == "fax"
}

// TerminalStatus reports whether a status callback ends the call.
func TerminalStatus(status string) bool {
	switch status {
	case "completed", "busy", "failed", "no-answer", "canceled":
		return true
	default:
		return false
	}
}
