// Package model defines the provider-agnostic gateway used by the agent loop
// to obtain completions from a language model.
//
// Core goals:
//   - A single synchronous call per turn (Complete) taking the whole conversation
//   - Typed gateway failures (*core.GatewayError) the loop can report without retrying
//   - Lightweight deterministic doubles for tests (ScriptedModel)
//
// Providers (OpenAI-compatible endpoints such as OpenRouter, Anthropic)
// implement the Model interface in sub-packages so the loop stays decoupled
// from vendor SDKs.
package model
