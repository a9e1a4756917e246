package model

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/reactloop/core"
)

// ErrScriptExhausted is returned by ScriptedModel when every scripted step has
// been consumed and no fallback is configured.
var ErrScriptExhausted = errors.New("scripted model: no responses left")

type scriptStep struct {
	text string
	err  error
}

// ScriptedModel is a deterministic in-memory Model for tests and examples.
// It replays scripted responses in order and records every request it saw.
// Once the script is consumed it repeats the fallback (if set) or fails.
type ScriptedModel struct {
	info Info

	mu       sync.Mutex
	steps    []scriptStep
	next     int
	fallback *scriptStep
	requests []Request
}

// NewScriptedModel constructs a ScriptedModel replaying responses in order.
func NewScriptedModel(responses ...string) *ScriptedModel {
	m := &ScriptedModel{info: Info{Name: "scripted", Provider: "scripted"}}
	for _, r := range responses {
		m.steps = append(m.steps, scriptStep{text: r})
	}
	return m
}

// Then appends a successful response to the script (chainable).
func (m *ScriptedModel) Then(text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, scriptStep{text: text})
	return m
}

// ThenError appends a failing call to the script (chainable).
func (m *ScriptedModel) ThenError(err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, scriptStep{err: err})
	return m
}

// Repeat sets the response returned forever once the script is consumed (chainable).
func (m *ScriptedModel) Repeat(text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &scriptStep{text: text}
	return m
}

// Complete implements Model.
func (m *ScriptedModel) Complete(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record a copy so later appends by the caller do not leak in.
	msgs := make([]core.Message, len(req.Messages))
	copy(msgs, req.Messages)
	m.requests = append(m.requests, Request{Messages: msgs})

	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	var step scriptStep
	switch {
	case m.next < len(m.steps):
		step = m.steps[m.next]
		m.next++
	case m.fallback != nil:
		step = *m.fallback
	default:
		return Response{}, &core.GatewayError{Provider: m.info.Provider, Kind: core.GatewayErrorUnknown, Err: ErrScriptExhausted}
	}

	if step.err != nil {
		return Response{}, step.err
	}
	return Response{Content: step.text, FinishReason: "stop"}, nil
}

// Calls returns how many times Complete was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns every recorded request in call order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }
