package testutil

import (
	"github.com/hupe1980/reactloop/core"
)

// ConversationBuilder helps construct conversations with fluent chaining for tests.
// Example:
//
//	conv := NewConversationBuilder("sys").User("q").Assistant("Action: calculate: 1+1").Observation("2").Build()
type ConversationBuilder struct {
	system string
	steps  []core.Message
}

// NewConversationBuilder creates a builder seeded with a system prompt.
func NewConversationBuilder(system string) *ConversationBuilder {
	return &ConversationBuilder{system: system}
}

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.steps = append(b.steps, core.Message{Role: core.RoleUser, Content: text})
	return b
}

// Assistant appends an assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.steps = append(b.steps, core.Message{Role: core.RoleAssistant, Content: text})
	return b
}

// Observation appends a user message prefixed with "Observation: " (chainable).
func (b *ConversationBuilder) Observation(text string) *ConversationBuilder {
	return b.User("Observation: " + text)
}

// Build returns a *core.Conversation holding the recorded messages.
func (b *ConversationBuilder) Build() *core.Conversation {
	conv := core.NewConversation(b.system)
	for _, m := range b.steps {
		if m.Role == core.RoleAssistant {
			conv.AppendAssistant(m.Content)
		} else {
			conv.AppendUser(m.Content)
		}
	}
	return conv
}

// Messages returns the message slice Build would produce.
func (b *ConversationBuilder) Messages() []core.Message {
	return b.Build().Messages()
}
