package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/internal/testutil"
	"github.com/hupe1980/reactloop/logging"
	"github.com/hupe1980/reactloop/model"
	"github.com/hupe1980/reactloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockTool is a testify mock implementing tool.Tool.
type mockTool struct {
	mock.Mock
	name string
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "mock" }
func (m *mockTool) Call(ctx context.Context, input string) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func newAgent(t *testing.T, m model.Model, tools []tool.Tool, optFns ...func(o *Options)) *ReactAgent {
	t.Helper()
	r, err := tool.NewRegistry(tools...)
	require.NoError(t, err)
	return NewReactAgent(m, r, optFns...)
}

func TestReactAgent_CalculatorScenario(t *testing.T) {
	calc := &mockTool{name: "calculate"}
	calc.On("Call", mock.Anything, "15 * 23").Return("345", nil).Once()

	m := model.NewScriptedModel(
		"Thought: 掛け算が必要です\nAction: calculate: 15 * 23\nPAUSE",
		"Answer: 345",
	)
	a := newAgent(t, m, []tool.Tool{calc}, func(o *Options) { o.SystemPrompt = CalculatorPrompt })

	res, err := a.Run(context.Background(), "15 × 23 は？")
	require.NoError(t, err)

	assert.Equal(t, StatusDone, res.Status)
	assert.True(t, res.Done())
	assert.Equal(t, "Answer: 345", res.Answer)
	assert.Equal(t, 2, res.Turns)
	assert.Equal(t, 2, m.Calls())
	calc.AssertExpectations(t)
	calc.AssertNumberOfCalls(t, "Call", 1)

	want := testutil.NewConversationBuilder(CalculatorPrompt).
		User("15 × 23 は？").
		Assistant("Thought: 掛け算が必要です\nAction: calculate: 15 * 23\nPAUSE").
		Observation("345").
		Assistant("Answer: 345").
		Messages()
	assert.Equal(t, want, res.Messages)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "Observation: 345"}, reqs[1].Messages[3])

	require.Len(t, res.Steps, 2)
	assert.Equal(t, &ActionDirective{Name: "calculate", Argument: "15 * 23"}, res.Steps[0].Action)
	assert.Equal(t, "345", res.Steps[0].Observation)
	assert.Nil(t, res.Steps[1].Action)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "15 × 23 は？", res.Question)
}

func TestReactAgent_MessageGrowth(t *testing.T) {
	echo := testutil.NewRecordingTool("echo", nil)
	m := model.NewScriptedModel(
		"Action: echo: a",
		"Action: echo: b",
		"Action: echo: c",
		"done",
	)
	a := newAgent(t, m, []tool.Tool{echo})

	res, err := a.Run(context.Background(), "go")
	require.NoError(t, err)

	// each continuing turn adds assistant + observation
	for i, req := range m.Requests() {
		assert.Len(t, req.Messages, 2+2*i, "request %d", i)
	}
	// the DONE turn adds only the assistant message
	assert.Len(t, res.Messages, 2+2*3+1)
	assert.Equal(t, []string{"a", "b", "c"}, echo.Inputs())
}

func TestReactAgent_UnknownActionAborts(t *testing.T) {
	calc := testutil.NewRecordingTool("calculate", nil)
	m := model.NewScriptedModel("Action: search: golang", "never reached")
	a := newAgent(t, m, []tool.Tool{calc})

	res, err := a.Run(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownAction)

	var ua *core.UnknownActionError
	require.ErrorAs(t, res.Err, &ua)
	assert.Equal(t, "search", ua.Name)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, res.Answer)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, 0, calc.Calls())
	// system, question, assistant; no observation is appended
	assert.Len(t, res.Messages, 3)
}

func TestReactAgent_UnicodeUnknownActionFails(t *testing.T) {
	calc := testutil.NewRecordingTool("calculate", nil)
	m := model.NewScriptedModel("Thought: 天気を調べます\nAction: 天気: Tokyo\nPAUSE")
	a := newAgent(t, m, []tool.Tool{calc})

	res, err := a.Run(context.Background(), "東京の天気は？")
	require.ErrorIs(t, err, core.ErrUnknownAction)

	var ua *core.UnknownActionError
	require.ErrorAs(t, err, &ua)
	assert.Equal(t, "天気", ua.Name)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, res.Answer)
}

func TestReactAgent_UnicodeToolName(t *testing.T) {
	weather := testutil.NewRecordingTool("天気", func(in string) (string, error) { return in + ": 晴れ", nil })
	m := model.NewScriptedModel("Action: 天気: 東京", "Answer: 晴れ")
	a := newAgent(t, m, []tool.Tool{weather})

	res, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"東京"}, weather.Inputs())
	assert.Equal(t, "Observation: 東京: 晴れ", m.Requests()[1].Messages[3].Content)
	assert.Equal(t, "Answer: 晴れ", res.Answer)
}

func TestReactAgent_UnknownActionReport(t *testing.T) {
	calc := testutil.NewRecordingTool("calculate", nil)
	m := model.NewScriptedModel("Action: search: golang", "Answer: sorry")
	a := newAgent(t, m, []tool.Tool{calc}, func(o *Options) { o.UnknownAction = UnknownActionReport })

	res, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Answer: sorry", res.Answer)
	assert.Equal(t, 2, m.Calls())

	last := m.Requests()[1].Messages[3]
	assert.Equal(t, "Observation: Unknown action: search. Available actions: calculate", last.Content)
	assert.ErrorIs(t, res.Steps[0].ToolErr, core.ErrUnknownAction)
}

func TestReactAgent_HandlerErrorContinues(t *testing.T) {
	calc := testutil.NewRecordingTool("calculate", func(string) (string, error) {
		return "", errors.New("division by zero")
	})
	m := model.NewScriptedModel("Action: calculate: 1/0", "Answer: cannot divide")
	a := newAgent(t, m, []tool.Tool{calc})

	res, err := a.Run(context.Background(), "1/0?")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)

	obs := m.Requests()[1].Messages[3].Content
	assert.Equal(t, "Observation: calculate error: division by zero", obs)
	assert.Error(t, res.Steps[0].ToolErr)
}

func TestReactAgent_TurnBudget(t *testing.T) {
	calc := testutil.NewRecordingTool("calculate", nil)
	m := model.NewScriptedModel().Repeat("Action: calculate: 1+1")
	a := newAgent(t, m, []tool.Tool{calc}, func(o *Options) { o.MaxTurns = 3 })

	res, err := a.Run(context.Background(), "loop forever")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTurnBudgetExhausted)

	var tb *core.TurnBudgetError
	require.ErrorAs(t, err, &tb)
	assert.Equal(t, 3, tb.MaxTurns)
	assert.Equal(t, "no answer reached within 3 turns", err.Error())

	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, 3, calc.Calls())
	assert.Equal(t, 3, res.Turns)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Len(t, res.Messages, 2+2*3)
}

func TestReactAgent_DefaultMaxTurns(t *testing.T) {
	m := model.NewScriptedModel().Repeat("Action: echo: x")
	a := newAgent(t, m, []tool.Tool{testutil.NewRecordingTool("echo", nil)}, func(o *Options) { o.MaxTurns = 0 })

	assert.Equal(t, core.DefaultMaxTurns, a.MaxTurns())

	_, err := a.Run(context.Background(), "q")
	assert.ErrorIs(t, err, core.ErrTurnBudgetExhausted)
	assert.Equal(t, core.DefaultMaxTurns, m.Calls())
}

func TestReactAgent_GatewayError(t *testing.T) {
	gwErr := &core.GatewayError{Provider: "openai", Kind: core.GatewayErrorRateLimit, StatusCode: 429, Err: errors.New("slow down")}
	m := model.NewScriptedModel("Action: echo: x").ThenError(gwErr)
	echo := testutil.NewRecordingTool("echo", nil)
	a := newAgent(t, m, []tool.Tool{echo})

	res, err := a.Run(context.Background(), "q")
	assert.Same(t, gwErr, err)
	assert.ErrorIs(t, err, core.ErrGateway)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 2, res.Turns)
	assert.Equal(t, 1, echo.Calls())
}

func TestReactAgent_PlainModelErrorIsWrapped(t *testing.T) {
	m := model.NewScriptedModel().ThenError(errors.New("boom"))
	a := newAgent(t, m, nil)

	_, err := a.Run(context.Background(), "q")

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.GatewayErrorUnknown, gwErr.Kind)
	assert.Equal(t, "scripted", gwErr.Provider)
}

func TestReactAgent_CancelledContext(t *testing.T) {
	m := model.NewScriptedModel("Answer: never")
	a := newAgent(t, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := a.Run(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 0, m.Calls())
	assert.Equal(t, 0, res.Turns)
}

func TestReactAgent_Hooks(t *testing.T) {
	var (
		turns, models, calls, returns int
		finished                      *Result
	)
	hooks := Hooks{
		OnTurnStart:     func(context.Context, *TurnEvent) { turns++ },
		OnModelResponse: func(context.Context, *ModelEvent) { models++ },
		OnToolCall:      func(_ context.Context, ev *ToolEvent) { calls++; assert.Equal(t, "2+2", ev.Input) },
		OnToolReturn:    func(_ context.Context, ev *ToolEvent) { returns++; assert.Equal(t, "4", ev.Output) },
		OnFinish:        func(_ context.Context, r *Result) { finished = r },
	}

	calc := testutil.NewRecordingTool("calculate", func(string) (string, error) { return "4", nil })
	m := model.NewScriptedModel("Action: calculate: 2+2", "Answer: 4")
	a := newAgent(t, m, []tool.Tool{calc}, func(o *Options) { o.Hooks = hooks })

	res, err := a.Run(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, 2, turns)
	assert.Equal(t, 2, models)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, returns)
	assert.Same(t, res, finished)
}

func TestMergeHooks(t *testing.T) {
	var order []string
	a := Hooks{OnFinish: func(context.Context, *Result) { order = append(order, "a") }}
	b := Hooks{OnFinish: func(context.Context, *Result) { order = append(order, "b") }}

	merged := MergeHooks(a, Hooks{}, b)
	merged.finish(context.Background(), &Result{})

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Nil(t, merged.OnTurnStart)
}

func TestReactAgent_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})

	m := model.NewScriptedModel("Answer: hi")
	a := newAgent(t, m, nil, func(o *Options) { o.Logger = logger })

	res, err := a.Run(context.Background(), "hello")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"agent.session.start"`)
	assert.Contains(t, out, `"msg":"agent.session.done"`)
	assert.Contains(t, out, res.SessionID)
}

func TestReactAgent_ConcurrentSessions(t *testing.T) {
	m := model.NewScriptedModel().Repeat("Answer: ok")
	a := newAgent(t, m, []tool.Tool{testutil.NewRecordingTool("echo", nil)})

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := a.Run(context.Background(), "q")
			assert.NoError(t, err)
			ids[i] = res.SessionID
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, 16, m.Calls())
}

func TestReactAgent_ReplayParsesIdentically(t *testing.T) {
	m := model.NewScriptedModel("Action: echo: one\nAction: echo: two", "Answer: done")
	a := newAgent(t, m, []tool.Tool{testutil.NewRecordingTool("echo", nil)})

	res, err := a.Run(context.Background(), "q")
	require.NoError(t, err)

	var replayed []*ActionDirective
	for _, msg := range res.Messages {
		if msg.Role != core.RoleAssistant {
			continue
		}
		if d, ok := ParseAction(msg.Content); ok {
			replayed = append(replayed, &d)
		} else {
			replayed = append(replayed, nil)
		}
	}

	require.Len(t, replayed, len(res.Steps))
	for i, step := range res.Steps {
		assert.Equal(t, step.Action, replayed[i])
	}
	assert.Equal(t, 2, m.Calls())
}

func TestParseUnknownActionPolicy(t *testing.T) {
	p, err := ParseUnknownActionPolicy("Report")
	require.NoError(t, err)
	assert.Equal(t, UnknownActionReport, p)

	p, err = ParseUnknownActionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, UnknownActionAbort, p)

	_, err = ParseUnknownActionPolicy("retry")
	assert.Error(t, err)
	assert.True(t, strings.Contains(UnknownActionPolicy(7).String(), "7"))
}
