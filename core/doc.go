// Package core provides the foundational domain types shared by every other
// reactloop package:
//
//   - Message / Role (one role-tagged entry of the model context)
//   - Conversation (the append-only message sequence owned by one session)
//   - TurnCounter (the per-session bound on model round-trips)
//   - The error taxonomy surfaced by the agent loop (gateway, unknown action,
//     exhausted turn budget)
//
// The package has no knowledge of models, tools or the loop itself; it only
// defines the vocabulary they exchange.
package core
