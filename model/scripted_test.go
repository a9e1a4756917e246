package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/reactloop/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedModel_ReplaysInOrder(t *testing.T) {
	m := NewScriptedModel("first").Then("second")
	conv := core.NewConversation("sys")
	conv.AppendUser("q")

	r1, err := m.Complete(context.Background(), NewRequest(conv))
	require.NoError(t, err)
	r2, err := m.Complete(context.Background(), NewRequest(conv))
	require.NoError(t, err)

	assert.Equal(t, "first", r1.Content)
	assert.Equal(t, "second", r2.Content)
	assert.Equal(t, 2, m.Calls())
}

func TestScriptedModel_ExhaustedReturnsGatewayError(t *testing.T) {
	m := NewScriptedModel()

	_, err := m.Complete(context.Background(), Request{})

	assert.ErrorIs(t, err, core.ErrGateway)
	assert.ErrorIs(t, err, ErrScriptExhausted)
}

func TestScriptedModel_RepeatFallback(t *testing.T) {
	m := NewScriptedModel("once").Repeat("again")

	for _, want := range []string{"once", "again", "again"} {
		resp, err := m.Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
}

func TestScriptedModel_ThenError(t *testing.T) {
	boom := errors.New("boom")
	m := NewScriptedModel().ThenError(boom)

	_, err := m.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestScriptedModel_RecordsRequestSnapshots(t *testing.T) {
	m := NewScriptedModel("a", "b")
	conv := core.NewConversation("sys")
	conv.AppendUser("q")

	_, _ = m.Complete(context.Background(), NewRequest(conv))
	conv.AppendAssistant("a")
	_, _ = m.Complete(context.Background(), NewRequest(conv))

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Messages, 2)
	assert.Len(t, reqs[1].Messages, 3)
}

func TestScriptedModel_CancelledContext(t *testing.T) {
	m := NewScriptedModel("never")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScriptedModel_ConcurrentUse(t *testing.T) {
	m := NewScriptedModel().Repeat("ok")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Complete(context.Background(), Request{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.Calls())
}

func TestNewGatewayError_Classification(t *testing.T) {
	cause := errors.New("x")

	assert.Equal(t, core.GatewayErrorNetwork, NewGatewayError("p", 0, cause).Kind)
	assert.Equal(t, core.GatewayErrorAuth, NewGatewayError("p", 401, cause).Kind)
	assert.Equal(t, core.GatewayErrorRateLimit, NewGatewayError("p", 429, cause).Kind)
	assert.Equal(t, 429, NewGatewayError("p", 429, cause).StatusCode)
}
