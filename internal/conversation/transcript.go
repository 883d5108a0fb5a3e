package conversation

import (
	"sync"

	"voicereach/internal/calls"
)

// Transcript is the append-only ordered log of turns for one call.
//
// Append is the only mutator. No deletion, no reordering, no deduplication:
// a repeated identical utterance is a legitimate distinct turn.
type Transcript struct {
	mu    sync.Mutex
	turns []calls.Turn
}

func NewTranscript() *Transcript { return &Transcript{} }

func (t *Transcript) Append(turn calls.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// All returns the turns in insertion order. The returned slice is a copy;
// callers cannot mutate the log through it.
func (t *Transcript) All() []calls.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]calls.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
