package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/model"
	"github.com/hupe1980/reactloop/tool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	calc := tool.NewFunctionTool("calculate", "math", func(_ context.Context, in string) (string, error) {
		if in == "bad" {
			return "", errors.New("parse error")
		}
		return "4", nil
	})
	m := model.NewScriptedModel("Action: calculate: 2+2", "Action: calculate: bad", "Answer: 4")
	a := agent.NewReactAgent(m, tool.MustRegistry(calc), func(o *agent.Options) { o.Hooks = c.Hooks() })

	_, err = a.Run(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.turns))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.modelCalls.WithLabelValues("scripted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.toolCalls.WithLabelValues("calculate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.toolCalls.WithLabelValues("calculate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues("done", "none")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.sessionTurns))
}

func TestCollector_UnknownActionAndBudget(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	hooks := c.Hooks()

	hooks.OnToolReturn(context.Background(), &agent.ToolEvent{Tool: "search", Err: &core.UnknownActionError{Name: "search"}})
	hooks.OnFinish(context.Background(), &agent.Result{Status: agent.StatusFailed, Err: &core.TurnBudgetError{MaxTurns: 3}, Turns: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.toolCalls.WithLabelValues("search", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues("failed", "turn_budget")))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "none", Reason(nil))
	assert.Equal(t, "gateway", Reason(&core.GatewayError{Err: errors.New("x")}))
	assert.Equal(t, "unknown_action", Reason(&core.UnknownActionError{Name: "x"}))
	assert.Equal(t, "turn_budget", Reason(&core.TurnBudgetError{MaxTurns: 1}))
	assert.Equal(t, "cancelled", Reason(context.Canceled))
	assert.Equal(t, "other", Reason(errors.New("x")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.Hooks().OnModelResponse(context.Background(), &agent.ModelEvent{Model: model.Info{Provider: "openai"}, Duration: time.Second})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.True(t, strings.Contains(string(body), `reactloop_model_calls_total{outcome="ok",provider="openai"} 1`))
}
