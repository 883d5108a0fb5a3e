package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"voicereach/internal/calls"
	"voicereach/internal/campaigns"
	"voicereach/internal/conversation"
)

// Generator implements conversation.ResponseGenerator on top of the
// Anthropic Messages API.
type Generator struct {
	client *Client
	log    *slog.Logger
}

var _ conversation.ResponseGenerator = (*Generator)(nil)

func NewGenerator(client *Client, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{client: client, log: log}
}

func (g *Generator) NextUtterance(ctx context.Context, transcript []calls.Turn, cc conversation.CallContext, camp campaigns.Campaign) (string, error) {
	prompt := fmt.Sprintf(
		"Campaign: %s\nCall attempt: %d, time of day: %s\n\nTranscript so far:\n%s\nAgent:",
		camp.Name, cc.Attempt, cc.TimeOfDay, renderTranscript(transcript),
	)
	text, err := g.client.Complete(ctx, nextUtteranceSystem, []Message{{Role: "user", Content: prompt}}, 256)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("llm: blank utterance")
	}
	return text, nil
}

func (g *Generator) ScoreSentiment(ctx context.Context, transcript []calls.Turn) (calls.Sentiment, error) {
	raw, err := g.client.Complete(ctx, sentimentSystem, []Message{{Role: "user", Content: renderTranscript(transcript)}}, 128)
	if err != nil {
		return calls.Sentiment{}, err
	}
	var out calls.Sentiment
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return calls.Sentiment{}, fmt.Errorf("llm: parse sentiment: %w", err)
	}
	if out.Polarity < -1 || out.Polarity > 1 {
		return calls.Sentiment{}, fmt.Errorf("llm: polarity %v out of range", out.Polarity)
	}
	return out, nil
}

func (g *Generator) ExtractSignals(ctx context.Context, transcript []calls.Turn, goals []string) (calls.Signals, error) {
	prompt := renderTranscript(transcript)
	if len(goals) > 0 {
		prompt = "Extraction goals: " + strings.Join(goals, ", ") + "\n\n" + prompt
	}
	raw, err := g.client.Complete(ctx, extractSystem, []Message{{Role: "user", Content: prompt}}, 1024)
	if err != nil {
		return calls.Signals{}, err
	}
	var out calls.Signals
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		g.log.Warn("signal extraction returned malformed JSON", "err", err, "raw", raw)
		return calls.Signals{}, fmt.Errorf("llm: parse signals: %w", err)
	}
	return out, nil
}

func (g *Generator) Summarize(ctx context.Context, transcript []calls.Turn, outcome calls.Outcome) (string, error) {
	prompt := fmt.Sprintf("Outcome: %s\n\n%s", outcome, renderTranscript(transcript))
	text, err := g.client.Complete(ctx, summarizeSystem, []Message{{Role: "user", Content: prompt}}, 256)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func renderTranscript(transcript []calls.Turn) string {
	var b strings.Builder
	for _, t := range transcript {
		switch t.Speaker {
		case calls.SpeakerAgent:
			b.WriteString("Agent: ")
		case calls.SpeakerCustomer:
			b.WriteString("Customer: ")
		}
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// stripFences removes a wrapping markdown code fence, which models sometimes
// add despite the JSON-only instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
