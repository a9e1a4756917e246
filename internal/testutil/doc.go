// Package testutil provides small fluent helpers for tests (conversation
// builder, recording tool) to reduce boilerplate and keep assertions
// focused on behaviour.
package testutil
