package agent

import (
	"context"
	"time"

	"github.com/hupe1980/reactloop/model"
)

// TurnEvent is passed to OnTurnStart.
type TurnEvent struct {
	SessionID string
	Turn      int
	MaxTurns  int
}

// ModelEvent is passed to OnModelResponse after every gateway call.
type ModelEvent struct {
	SessionID string
	Turn      int
	Model     model.Info
	Response  string
	Usage     *model.TokenUsage
	Duration  time.Duration
	Err       error
}

// ToolEvent is passed to OnToolCall (before dispatch) and OnToolReturn
// (after dispatch; Output, Err and Duration set).
type ToolEvent struct {
	SessionID string
	Turn      int
	Tool      string
	Input     string
	Output    string
	Err       error
	Duration  time.Duration
}

// Hooks observe a running session. All fields are optional. Hooks run
// synchronously on the session goroutine and must not block.
type Hooks struct {
	OnTurnStart     func(context.Context, *TurnEvent)
	OnModelResponse func(context.Context, *ModelEvent)
	OnToolCall      func(context.Context, *ToolEvent)
	OnToolReturn    func(context.Context, *ToolEvent)
	OnFinish        func(context.Context, *Result)
}

// MergeHooks combines hook sets; each callback fans out in argument order.
func MergeHooks(sets ...Hooks) Hooks {
	var merged Hooks
	for _, h := range sets {
		merged.OnTurnStart = chain(merged.OnTurnStart, h.OnTurnStart)
		merged.OnModelResponse = chain(merged.OnModelResponse, h.OnModelResponse)
		merged.OnToolCall = chain(merged.OnToolCall, h.OnToolCall)
		merged.OnToolReturn = chain(merged.OnToolReturn, h.OnToolReturn)
		merged.OnFinish = chain(merged.OnFinish, h.OnFinish)
	}
	return merged
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, ev T) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func (h Hooks) turnStart(ctx context.Context, ev *TurnEvent) {
	if h.OnTurnStart != nil {
		h.OnTurnStart(ctx, ev)
	}
}

func (h Hooks) modelResponse(ctx context.Context, ev *ModelEvent) {
	if h.OnModelResponse != nil {
		h.OnModelResponse(ctx, ev)
	}
}

func (h Hooks) toolCall(ctx context.Context, ev *ToolEvent) {
	if h.OnToolCall != nil {
		h.OnToolCall(ctx, ev)
	}
}

func (h Hooks) toolReturn(ctx context.Context, ev *ToolEvent) {
	if h.OnToolReturn != nil {
		h.OnToolReturn(ctx, ev)
	}
}

func (h Hooks) finish(ctx context.Context, r *Result) {
	if h.OnFinish != nil {
		h.OnFinish(ctx, r)
	}
}
