package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/reactloop"
	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/internal/config"
	"github.com/hupe1980/reactloop/internal/presentation"
	"github.com/hupe1980/reactloop/logging"
	"github.com/hupe1980/reactloop/metrics"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [question]",
		Short: "Answer one question with the ReAct loop",
		Long: `Runs the agent loop once and prints every turn. The question is taken from
the arguments or, when none are given, from one line of standard input.

The exit code is 0 whether the agent answered or gave up; the transcript
states which failure occurred.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Question: ")
				question, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if question == "" {
				return errors.New("no question given")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runQuestion(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, question)
		},
	}
	return cmd
}

func runQuestion(ctx context.Context, out, errOut io.Writer, cfg *config.Config, question string) error {
	logger, err := config.BuildLogger(cfg, errOut)
	if err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	registry, err := config.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	policy, err := agent.ParseUnknownActionPolicy(cfg.UnknownAction)
	if err != nil {
		return err
	}

	printer := presentation.NewPrinter(out, cfg.Plain)
	hooks := agent.MergeHooks(printer.Hooks(), logHooks(logger))

	if cfg.MetricsAddr != "" {
		collector, shutdown, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		hooks = agent.MergeHooks(hooks, collector.Hooks())
	}

	loop := reactloop.New(m, registry, func(o *reactloop.Options) {
		o.MaxTurns = cfg.MaxTurns
		o.UnknownAction = policy
		o.Logger = logger.WithComponent("agent")
		o.Hooks = hooks
		o.MaxConcurrentQueries = cfg.MaxConcurrent
	})

	printer.Banner(reactloop.Version, registry.Tools())
	printer.Question(question)

	res, err := loop.Query(ctx, question)
	if res == nil {
		return err
	}
	printer.Outcome(res)
	logger.WithSession(res.SessionID).LogSession(string(res.Status), res.Turns, res.Duration, res.Err)
	return nil
}

// logHooks records model and tool call latency through the structured logger.
func logHooks(logger *logging.StructuredLogger) agent.Hooks {
	return agent.Hooks{
		OnModelResponse: func(_ context.Context, e *agent.ModelEvent) {
			logger.WithSession(e.SessionID).LogModelCall(e.Model.Name, e.Turn, e.Duration, e.Err)
		},
		OnToolReturn: func(_ context.Context, e *agent.ToolEvent) {
			logger.WithSession(e.SessionID).LogToolCall(e.Tool, e.Duration, e.Err)
		},
	}
}

// serveMetrics starts a Prometheus endpoint on addr.
func serveMetrics(addr string, logger *logging.StructuredLogger) (*metrics.Collector, func(), error) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics.server.start", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics.server.failed", "error", err.Error())
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return collector, shutdown, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
