package model

import (
	"context"

	"github.com/hupe1980/reactloop/core"
)

// Request captures the full conversation sent on one completion call. The
// gateway keeps no state between calls; everything it needs is in Messages.
type Request struct {
	Messages []core.Message `json:"messages"`
}

// NewRequest snapshots a conversation into a Request.
func NewRequest(conv *core.Conversation) Request {
	return Request{Messages: conv.Messages()}
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the assistant text produced for a Request.
type Response struct {
	ID           string      `json:"id,omitempty"`
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason,omitempty"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "scripted", ...
}

// Model is the gateway contract consumed by the agent loop.
//
// Implementations must:
//   - Treat each call as a pure function of req (no hidden conversation state)
//   - Report failures as *core.GatewayError where the cause is known
//   - Be safe for concurrent use; one instance is shared by every session
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// NewGatewayError classifies err into a *core.GatewayError. A zero status
// means the request never produced an HTTP response (DNS, TLS, timeout,
// cancellation) and is reported as a network failure.
func NewGatewayError(provider string, status int, err error) *core.GatewayError {
	kind := core.GatewayErrorNetwork
	if status != 0 {
		kind = core.KindFromStatus(status)
	}
	return &core.GatewayError{Provider: provider, Kind: kind, StatusCode: status, Err: err}
}
