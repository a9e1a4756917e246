package core

import "strings"

// Role tags the author of a Message.
type Role string

const (
	// RoleSystem marks the behavioural contract sent first on every call.
	RoleSystem Role = "system"
	// RoleUser marks user questions and tool observations.
	RoleUser Role = "user"
	// RoleAssistant marks raw model output.
	RoleAssistant Role = "assistant"
)

// String returns the wire name of the role.
func (r Role) String() string { return string(r) }

// Message is one role-tagged entry of a Conversation. It is a value type and
// must not be modified once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered, append-only message sequence sent to the model
// on every turn. It always starts with exactly one system message.
//
// Contract:
//   - Len grows monotonically; there is no removal or edit operation
//   - Messages returns a defensive copy
//   - A Conversation is owned by a single session and is not safe for
//     concurrent mutation
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with the system prompt.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{messages: []Message{{Role: RoleSystem, Content: systemPrompt}}}
}

// AppendUser appends a user message.
func (c *Conversation) AppendUser(text string) { c.append(RoleUser, text) }

// AppendAssistant appends an assistant message.
func (c *Conversation) AppendAssistant(text string) { c.append(RoleAssistant, text) }

func (c *Conversation) append(role Role, text string) {
	c.messages = append(c.messages, Message{Role: role, Content: text})
}

// Len returns the number of messages including the system prompt.
func (c *Conversation) Len() int { return len(c.messages) }

// SystemPrompt returns the content of the leading system message.
func (c *Conversation) SystemPrompt() string { return c.messages[0].Content }

// Last returns the most recently appended message.
func (c *Conversation) Last() Message { return c.messages[len(c.messages)-1] }

// Messages returns a copy of the full message sequence.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Assistant returns the content of every assistant message in order.
func (c *Conversation) Assistant() []string {
	var out []string
	for _, m := range c.messages {
		if m.Role == RoleAssistant {
			out = append(out, m.Content)
		}
	}
	return out
}

// String renders the conversation as "role: content" blocks, mainly for
// debugging and test failure output.
func (c *Conversation) String() string {
	var b strings.Builder
	for i, m := range c.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
