package testutil

import (
	"context"
	"sync"
)

// RecordingTool is a tool.Tool test double that records every input and
// answers from a fixed function. Safe for concurrent use.
type RecordingTool struct {
	name string
	fn   func(input string) (string, error)

	mu     sync.Mutex
	inputs []string
}

// NewRecordingTool creates a tool named name answered by fn. A nil fn echoes
// the input.
func NewRecordingTool(name string, fn func(input string) (string, error)) *RecordingTool {
	if fn == nil {
		fn = func(input string) (string, error) { return input, nil }
	}
	return &RecordingTool{name: name, fn: fn}
}

// Name implements tool.Tool.
func (t *RecordingTool) Name() string { return t.name }

// Description implements tool.Tool.
func (t *RecordingTool) Description() string { return "recording test tool" }

// Call implements tool.Tool.
func (t *RecordingTool) Call(_ context.Context, input string) (string, error) {
	t.mu.Lock()
	t.inputs = append(t.inputs, input)
	t.mu.Unlock()
	return t.fn(input)
}

// Inputs returns every recorded input in call order.
func (t *RecordingTool) Inputs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.inputs))
	copy(out, t.inputs)
	return out
}

// Calls returns the number of recorded calls.
func (t *RecordingTool) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inputs)
}
