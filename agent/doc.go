// Package agent implements the Reason-and-Act loop.
//
// The package focuses on three concerns:
//
//  1. Action parsing (ParseAction) of free-form model text
//  2. A stateful Chat that couples one Conversation with a model.Model
//  3. The ReactAgent state machine: RUNNING(turn) -> DONE(answer) | FAILED(err)
//
// Execution model:
//   - Each Run owns a fresh Conversation seeded with the static system prompt
//     and the question; turns are strictly sequential
//   - A reply without a directive is the final answer
//   - A known directive is dispatched through tool.Registry and its output is
//     sent back as "Observation: <text>"
//   - Handler failures become observation text; gateway errors, unknown
//     actions (under the default policy) and an exhausted turn budget end the
//     session
//
// Observability is provided through Hooks and a logging.Logger; the metrics
// package builds Hooks backed by Prometheus collectors.
package agent
