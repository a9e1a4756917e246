package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageBody = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [{"type": "text", "text": "Thought: need math\n"}, {"type": "text", "text": "Action: calculate: 2+2"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 4}
}`

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewModel(func(o *Options) {
		o.BaseURL = srv.URL + "/"
		o.APIKey = "test-key"
	})
}

func TestModel_CompleteLiftsSystemPrompt(t *testing.T) {
	var payload struct {
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}

	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageBody)
	})

	conv := core.NewConversation("ReAct contract")
	conv.AppendUser("2+2?")

	resp, err := m.Complete(context.Background(), model.NewRequest(conv))
	require.NoError(t, err)

	assert.Equal(t, "Thought: need math\nAction: calculate: 2+2", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 14, resp.Usage.TotalTokens)

	require.Len(t, payload.System, 1)
	assert.Equal(t, "ReAct contract", payload.System[0].Text)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "user", payload.Messages[0].Role)
}

func TestModel_CompleteClassifiesAuthError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "authentication_error", "message": "bad key"}}`)
	})

	_, err := m.Complete(context.Background(), model.Request{Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}}})

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.GatewayErrorAuth, gwErr.Kind)
	assert.Equal(t, "anthropic", gwErr.Provider)
}

func TestModel_CompleteDoesNotRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "overloaded_error", "message": "busy"}}`)
	})

	_, err := m.Complete(context.Background(), model.Request{Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}}})

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.GatewayErrorServer, gwErr.Kind)
	assert.Equal(t, int32(1), hits.Load())
}

func TestBuildMessages_SkipsSystem(t *testing.T) {
	msgs := buildMessages([]core.Message{
		{Role: core.RoleSystem, Content: "sys"},
		{Role: core.RoleUser, Content: "q"},
		{Role: core.RoleAssistant, Content: "a"},
	})
	assert.Len(t, msgs, 2)
}
