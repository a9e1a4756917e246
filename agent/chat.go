package agent

import (
	"context"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/model"
)

// Chat couples one Conversation with a Model. Each Send calls the model with
// the full history plus the new user text and records both on success.
//
// A Chat is owned by a single session and is not safe for concurrent use.
type Chat struct {
	conv  *core.Conversation
	model model.Model
}

// NewChat starts a conversation seeded with systemPrompt. An empty prompt
// still produces the leading system message.
func NewChat(m model.Model, systemPrompt string) *Chat {
	return &Chat{conv: core.NewConversation(systemPrompt), model: m}
}

// Send completes the conversation extended by text. The user message and
// the reply are appended together on success; on failure the conversation
// is left unchanged so it keeps alternating user and assistant turns.
func (c *Chat) Send(ctx context.Context, text string) (model.Response, error) {
	req := model.NewRequest(c.conv)
	req.Messages = append(req.Messages, core.Message{Role: core.RoleUser, Content: text})

	resp, err := c.model.Complete(ctx, req)
	if err != nil {
		return model.Response{}, err
	}
	c.conv.AppendUser(text)
	c.conv.AppendAssistant(resp.Content)
	return resp, nil
}

// Complete calls the model with the current conversation. On success the
// reply is appended as an assistant message; on failure the conversation is
// left unchanged.
func (c *Chat) Complete(ctx context.Context) (model.Response, error) {
	resp, err := c.model.Complete(ctx, model.NewRequest(c.conv))
	if err != nil {
		return model.Response{}, err
	}
	c.conv.AppendAssistant(resp.Content)
	return resp, nil
}

// Conversation returns the underlying conversation.
func (c *Chat) Conversation() *core.Conversation { return c.conv }

// Model returns the gateway used by the chat.
func (c *Chat) Model() model.Model { return c.model }
