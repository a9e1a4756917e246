package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/logging"
	"github.com/hupe1980/reactloop/model"
	"github.com/hupe1980/reactloop/tool"
)

// UnknownActionPolicy decides what happens when the model names a tool that
// is not registered.
type UnknownActionPolicy int

const (
	// UnknownActionAbort ends the session FAILED with *core.UnknownActionError.
	UnknownActionAbort UnknownActionPolicy = iota
	// UnknownActionReport tells the model which actions exist and continues.
	UnknownActionReport
)

// String returns the configuration name of the policy.
func (p UnknownActionPolicy) String() string {
	switch p {
	case UnknownActionAbort:
		return "abort"
	case UnknownActionReport:
		return "report"
	default:
		return fmt.Sprintf("UnknownActionPolicy(%d)", int(p))
	}
}

// ParseUnknownActionPolicy converts "abort" or "report" into a policy.
func ParseUnknownActionPolicy(s string) (UnknownActionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return UnknownActionAbort, nil
	case "report":
		return UnknownActionReport, nil
	default:
		return UnknownActionAbort, fmt.Errorf("unknown action policy %q (want abort or report)", s)
	}
}

// Options configures a ReactAgent.
//
// Use functional options with NewReactAgent to override defaults.
type Options struct {
	// SystemPrompt is the static behavioural contract sent as the first message.
	SystemPrompt string
	// MaxTurns bounds gateway calls per session. Values <= 0 mean core.DefaultMaxTurns.
	MaxTurns int
	// UnknownAction selects the unknown-action policy (default abort).
	UnknownAction UnknownActionPolicy
	// Logger receives structured loop events. Defaults to logging.NoOpLogger.
	Logger logging.Logger
	// Hooks observe turns, model calls and tool dispatches.
	Hooks Hooks
}

// ReactAgent drives the Reason-and-Act loop: call the model, parse one
// directive, dispatch it, feed the observation back, repeat until the model
// answers without a directive or the turn budget is spent.
//
// A ReactAgent holds no per-session state; Run may be called concurrently.
// The model and registry are shared read-only.
type ReactAgent struct {
	model    model.Model
	registry *tool.Registry
	opts     Options
}

// NewReactAgent creates a loop over m and registry.
//
// Defaults:
//   - SystemPrompt chosen by PromptFor(registry.Names())
//   - MaxTurns core.DefaultMaxTurns
//   - UnknownAction UnknownActionAbort
//   - Logger logging.NoOpLogger
func NewReactAgent(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *ReactAgent {
	if registry == nil {
		registry = tool.MustRegistry()
	}

	opts := Options{
		SystemPrompt:  PromptFor(registry.Names()),
		MaxTurns:      core.DefaultMaxTurns,
		UnknownAction: UnknownActionAbort,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxTurns <= 0 {
		opts.MaxTurns = core.DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ReactAgent{model: m, registry: registry, opts: opts}
}

// Registry returns the tool registry used for dispatch.
func (a *ReactAgent) Registry() *tool.Registry { return a.registry }

// MaxTurns returns the effective turn budget.
func (a *ReactAgent) MaxTurns() int { return a.opts.MaxTurns }

// session is the mutable state of one Run.
type session struct {
	result  *Result
	chat    *Chat
	counter *core.TurnCounter
	start   time.Time
}

// Run answers one question. The returned Result is never nil and carries
// the terminal Status; when the session failed the same error is also
// returned, so callers can use either style:
//
//	res, err := a.Run(ctx, q)
//	switch {
//	case errors.Is(err, core.ErrTurnBudgetExhausted): ...
//	case errors.Is(err, core.ErrUnknownAction): ...
//	case errors.Is(err, core.ErrGateway): ...
//	}
func (a *ReactAgent) Run(ctx context.Context, question string) (*Result, error) {
	s := &session{
		result: &Result{
			SessionID: core.NewID(),
			Question:  question,
			Status:    StatusRunning,
		},
		chat:    NewChat(a.model, a.opts.SystemPrompt),
		counter: core.NewTurnCounter(a.opts.MaxTurns),
		start:   time.Now(),
	}
	s.chat.Conversation().AppendUser(question)

	log := a.opts.Logger
	sid := s.result.SessionID
	log.Info("agent.session.start", "session_id", sid, "max_turns", s.counter.Max(), "model", a.model.Info().Name)

	for {
		if err := ctx.Err(); err != nil {
			log.Warn("agent.session.cancelled", "session_id", sid, "turn", s.counter.Count(), "error", err.Error())
			return a.fail(ctx, s, err)
		}

		turn, ok := s.counter.Next()
		if !ok {
			return a.fail(ctx, s, &core.TurnBudgetError{MaxTurns: s.counter.Max()})
		}

		a.opts.Hooks.turnStart(ctx, &TurnEvent{SessionID: sid, Turn: turn, MaxTurns: s.counter.Max()})
		log.Debug("agent.turn.start", "session_id", sid, "turn", turn)

		step := Step{Turn: turn}
		turnStart := time.Now()

		// 1. Gateway call.
		resp, err := s.chat.Complete(ctx)
		a.opts.Hooks.modelResponse(ctx, &ModelEvent{
			SessionID: sid,
			Turn:      turn,
			Model:     a.model.Info(),
			Response:  resp.Content,
			Usage:     resp.Usage,
			Duration:  time.Since(turnStart),
			Err:       err,
		})
		if err != nil {
			log.Error("agent.model.error", "session_id", sid, "turn", turn, "error", err.Error())
			return a.fail(ctx, s, a.gatewayError(ctx, err))
		}

		// 2. The assistant message was appended by Complete.
		step.Response = resp.Content
		log.Debug("agent.model.response", "session_id", sid, "turn", turn, "chars", len(resp.Content))

		// 3. Parse.
		action, found := ParseAction(resp.Content)
		if !found {
			step.Duration = time.Since(turnStart)
			s.result.Steps = append(s.result.Steps, step)
			return a.done(ctx, s, resp.Content)
		}
		step.Action = &action

		obsText, err := a.dispatch(ctx, sid, turn, action, &step)
		if err != nil {
			step.Duration = time.Since(turnStart)
			s.result.Steps = append(s.result.Steps, step)
			return a.fail(ctx, s, err)
		}

		step.Observation = obsText
		step.Duration = time.Since(turnStart)
		s.result.Steps = append(s.result.Steps, step)

		s.chat.Conversation().AppendUser(FormatObservation(obsText))

		if s.counter.Exhausted() {
			log.Warn("agent.turn.budget_exhausted", "session_id", sid, "max_turns", s.counter.Max())
			return a.fail(ctx, s, &core.TurnBudgetError{MaxTurns: s.counter.Max()})
		}
	}
}

// dispatch executes one directive and returns the observation text. A
// non-nil error is terminal for the session.
func (a *ReactAgent) dispatch(ctx context.Context, sid string, turn int, action ActionDirective, step *Step) (string, error) {
	log := a.opts.Logger

	ev := &ToolEvent{SessionID: sid, Turn: turn, Tool: action.Name, Input: action.Argument}
	a.opts.Hooks.toolCall(ctx, ev)
	log.Info("agent.tool.call", "session_id", sid, "turn", turn, "tool", action.Name, "input", action.Argument)

	obs, err := a.registry.Dispatch(ctx, action.Name, action.Argument)
	if err != nil {
		var unknown *core.UnknownActionError
		if !errors.As(err, &unknown) {
			return "", err
		}

		ev.Err = err
		a.opts.Hooks.toolReturn(ctx, ev)

		if a.opts.UnknownAction == UnknownActionAbort {
			log.Warn("tool.dispatch.unknown", "session_id", sid, "turn", turn, "tool", action.Name, "policy", a.opts.UnknownAction.String())
			return "", err
		}

		log.Info("tool.dispatch.unknown", "session_id", sid, "turn", turn, "tool", action.Name, "policy", a.opts.UnknownAction.String())
		step.ToolErr = err
		return unknownActionObservation(unknown), nil
	}

	ev.Output = obs.Text
	ev.Err = obs.Err
	ev.Duration = obs.Duration
	a.opts.Hooks.toolReturn(ctx, ev)

	if obs.Failed() {
		step.ToolErr = obs.Err
		log.Warn("agent.tool.failed", "session_id", sid, "turn", turn, "tool", action.Name, "duration_ms", obs.Duration.Milliseconds(), "error", obs.Err.Error())
	} else {
		log.Info("agent.tool.completed", "session_id", sid, "turn", turn, "tool", action.Name, "duration_ms", obs.Duration.Milliseconds())
	}

	return obs.Text, nil
}

func unknownActionObservation(err *core.UnknownActionError) string {
	return fmt.Sprintf("Unknown action: %s. Available actions: %s", err.Name, strings.Join(err.Available, ", "))
}

// gatewayError normalizes a model failure. Typed gateway errors pass
// through; a cancelled context is reported as such; anything else is
// wrapped as an unclassified gateway error.
func (a *ReactAgent) gatewayError(ctx context.Context, err error) error {
	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	return &core.GatewayError{Provider: a.model.Info().Provider, Kind: core.GatewayErrorUnknown, Err: err}
}

func (a *ReactAgent) done(ctx context.Context, s *session, answer string) (*Result, error) {
	s.result.Status = StatusDone
	s.result.Answer = answer
	a.finish(ctx, s)
	return s.result, nil
}

func (a *ReactAgent) fail(ctx context.Context, s *session, err error) (*Result, error) {
	s.result.Status = StatusFailed
	s.result.Err = err
	a.finish(ctx, s)
	return s.result, err
}

func (a *ReactAgent) finish(ctx context.Context, s *session) {
	s.result.Turns = s.counter.Count()
	s.result.Messages = s.chat.Conversation().Messages()
	s.result.Duration = time.Since(s.start)

	args := []any{
		"session_id", s.result.SessionID,
		"status", string(s.result.Status),
		"turns", s.result.Turns,
		"duration_ms", s.result.Duration.Milliseconds(),
	}
	if s.result.Err != nil {
		a.opts.Logger.Warn("agent.session.failed", append(args, "error", s.result.Err.Error())...)
	} else {
		a.opts.Logger.Info("agent.session.done", args...)
	}

	a.opts.Hooks.finish(ctx, s.result)
}
