package telephony

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseSpeechForm(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("SpeechResult", "  yes I am interested  ")
	form.Set("Confidence", "0.92")

	req := httptest.NewRequest("POST", "/speech", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseSpeechForm(req)
	if err != nil {
		t.Fatalf("ParseSpeechForm: %v", err)
	}
	if got.CallSid != "CA123" {
		t.Errorf("CallSid = %q", got.CallSid)
	}
	if got.SpeechResult != "yes I am interested" {
		t.Errorf("SpeechResult = %q, want trimmed", got.SpeechResult)
	}
	if got.Confidence != 0.92 {
		t.Errorf("Confidence = %v", got.Confidence)
	}
}

func TestParseStatusForm(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA456")
	form.Set("CallStatus", "completed")
	form.Set("AnsweredBy", "human")
	form.Set("CallDuration", "73")

	req := httptest.NewRequest("POST", "/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseStatusForm(req)
	if err != nil {
		t.Fatalf("ParseStatusForm: %v", err)
	}
	if got.CallSid != "CA456" || got.CallStatus != "completed" {
		t.Errorf("got %+v", got)
	}
	if got.CallDurationSec != 73 {
		t.Errorf("CallDurationSec = %d, want 73", got.CallDurationSec)
	}
}

func TestMachineAnswered(t *testing.T) {
	cases := map[string]bool{
		"machine_start":    true,
		"machine_end_beep": true,
		"fax":              true,
		"human":            false,
		"unknown":          false,
		"":                 false,
	}
	for answeredBy, want := range cases {
		if got := MachineAnswered(answeredBy); got != want {
			t.Errorf("MachineAnswered(%q) = %v, want %v", answeredBy, got, want)
		}
	}
}

func TestTerminalStatus(t *testing.T) {
	for _, s := range []string{"completed", "busy", "failed", "no-answer", "canceled"} {
		if !TerminalStatus(s) {
			t.Errorf("TerminalStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"queued", "ringing", "in-progress", ""} {
		if TerminalStatus(s) {
			t.Errorf("TerminalStatus(%q) = true, want false", s)
		}
	}
}
