package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
)

// Minimal TwiML builder for the voice-agent loop. Only the verbs this
// service actually speaks are modeled; no provider SDK dependency.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name  `xml:"Gather"`
	Input         string    `xml:"input,attr"`
	Action        string    `xml:"action,attr"`
	Method        string    `xml:"method,attr"`
	SpeechTimeout string    `xml:"speechTimeout,attr,omitempty"`
	Timeout       string    `xml:"timeout,attr,omitempty"`
	Say           *twimlSay `xml:"Say,omitempty"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  string   `xml:"length,attr,omitempty"`
}

// GatherSpeech speaks text and then listens for the customer's next
// utterance, posting the speech result to actionURL.
func GatherSpeech(text, actionURL string, timeoutSeconds int) (string, error) {
	if actionURL == "" {
		return "", errors.New("telephony: gather action url required")
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 5
	}
	g := twimlGather{
		Input:         "speech",
		Action:        actionURL,
		Method:        "POST",
		SpeechTimeout: "auto",
		Timeout:       strconv.Itoa(timeoutSeconds),
	}
	if text != "" {
		g.Say = &twimlSay{Text: text}
	}
	return renderTwiML(twimlResponse{Verbs: []any{g}})
}

// SayAndHangup speaks a closing line and tears the call down.
func SayAndHangup(text string) (string, error) {
	verbs := []any{}
	if text != "" {
		verbs = append(verbs, twimlSay{Text: text})
		verbs = append(verbs, twimlPause{Length: "1"})
	}
	verbs = append(verbs, twimlHangup{})
	return renderTwiML(twimlResponse{Verbs: verbs})
}

// Hangup tears the call down immediately.
func Hangup() (string, error) {
	return renderTwiML(twimlResponse{Verbs: []any{twimlHangup{}}})
}

func renderTwiML(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
