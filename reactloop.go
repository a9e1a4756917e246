// Package reactloop provides a high-level façade over the ReAct agent loop.
// Most applications interact with this package by:
//  1. Constructing a model.Model (model/openai, model/anthropic) once per process
//  2. Building a tool.Registry from the tools the agent may use
//  3. Creating a Loop via New and answering questions with Query or QueryAll
//
// The façade delegates each session to agent.ReactAgent while keeping setup
// concise. Independent sessions share only the read-only model and registry,
// so they run concurrently; finished results are kept in a session.Store for
// the lifetime of the process.
package reactloop

import (
	"context"
	"fmt"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/logging"
	"github.com/hupe1980/reactloop/model"
	"github.com/hupe1980/reactloop/session"
	"github.com/hupe1980/reactloop/tool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Options configures the Loop instance.
type Options struct {
	// SystemPrompt overrides the static prompt chosen for the registry.
	SystemPrompt string
	// MaxTurns bounds gateway calls per session (default core.DefaultMaxTurns).
	MaxTurns int
	// UnknownAction selects abort (default) or report.
	UnknownAction agent.UnknownActionPolicy

	// MaxConcurrentQueries limits the number of sessions that can execute
	// simultaneously. This provides backpressure on the model gateway. Set
	// to 0 for unlimited.
	MaxConcurrentQueries int

	// SessionStore records finished results (defaults to in-memory).
	SessionStore session.Store

	// Hooks observe every session.
	Hooks agent.Hooks

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Loop is the high-level façade aggregating the agent, its tools and the
// session store.
type Loop struct {
	opts  Options
	agent *agent.ReactAgent
	sem   *semaphore.Weighted
}

// New creates a Loop over m and registry. Any unset service is initialized
// with an in-memory implementation.
func New(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Loop {
	opts := Options{
		MaxTurns:             core.DefaultMaxTurns,
		MaxConcurrentQueries: 10,
		SessionStore:         session.NewInMemoryStore(),
		Logger:               logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	a := agent.NewReactAgent(m, registry, func(o *agent.Options) {
		if opts.SystemPrompt != "" {
			o.SystemPrompt = opts.SystemPrompt
		}
		o.MaxTurns = opts.MaxTurns
		o.UnknownAction = opts.UnknownAction
		o.Logger = opts.Logger
		o.Hooks = opts.Hooks
	})

	l := &Loop{opts: opts, agent: a}
	if opts.MaxConcurrentQueries > 0 {
		l.sem = semaphore.NewWeighted(int64(opts.MaxConcurrentQueries))
	}
	return l
}

// Agent returns the underlying loop implementation.
func (l *Loop) Agent() *agent.ReactAgent { return l.agent }

// Query answers one question in a fresh session. It blocks while
// MaxConcurrentQueries sessions are already running. The result is stored
// and returned together with the session error, if any.
func (l *Loop) Query(ctx context.Context, question string) (*agent.Result, error) {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for a query slot: %w", err)
		}
		defer l.sem.Release(1)
	}

	res, runErr := l.agent.Run(ctx, question)

	if err := l.opts.SessionStore.Save(res); err != nil {
		l.opts.Logger.Warn("reactloop.session.save_failed", "session_id", res.SessionID, "error", err.Error())
	}

	return res, runErr
}

// QueryAll answers independent questions concurrently. Results are returned
// in question order; a failed session does not cancel the others and is
// reported through its Result. The error is non-nil only when a session
// could not be started (for example because ctx was cancelled while
// waiting for a slot).
func (l *Loop) QueryAll(ctx context.Context, questions []string) ([]*agent.Result, error) {
	results := make([]*agent.Result, len(questions))

	var g errgroup.Group
	if l.opts.MaxConcurrentQueries > 0 {
		g.SetLimit(l.opts.MaxConcurrentQueries)
	}

	for i, q := range questions {
		g.Go(func() error {
			res, err := l.Query(ctx, q)
			if res == nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Session returns a finished result by session id.
func (l *Loop) Session(id string) (*agent.Result, error) {
	return l.opts.SessionStore.Get(id)
}

// Sessions returns every stored result.
func (l *Loop) Sessions() ([]*agent.Result, error) {
	return l.opts.SessionStore.List()
}
