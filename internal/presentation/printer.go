package presentation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/tool"
)

const rule = "------------------------------------------------------------"

// Printer writes the human readable transcript of sessions to w.
type Printer struct {
	w       io.Writer
	plain   bool
	profile termenv.Profile
	render  func(string) (string, error)
}

// NewPrinter creates a Printer. In plain mode no colours or markdown
// rendering are applied.
func NewPrinter(w io.Writer, plain bool) *Printer {
	p := &Printer{w: w, plain: plain, profile: termenv.Ascii}
	if !plain {
		p.profile = termenv.ColorProfile()
		p.render = NewRenderer(80)
	}
	return p
}

func (p *Printer) color(s, hex string) string {
	if p.plain {
		return s
	}
	return termenv.String(s).Foreground(p.profile.Color(hex)).String()
}

func (p *Printer) bold(s string) string {
	if p.plain {
		return s
	}
	return termenv.String(s).Bold().String()
}

// Banner prints the program name and the enabled tools.
func (p *Printer) Banner(version string, tools []tool.Tool) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.color("  reactloop "+version, "#818cf8"))
	fmt.Fprintln(p.w, p.color("  Thought -> Action -> PAUSE -> Observation", "#c084fc"))
	if len(tools) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, "  tools:")
		for _, t := range tools {
			fmt.Fprintf(p.w, "    %-14s %s\n", t.Name(), t.Description())
		}
	}
	fmt.Fprintln(p.w)
}

// Question prints the question header.
func (p *Printer) Question(q string) {
	fmt.Fprintf(p.w, "%s %s\n\n%s\n", p.bold("Question:"), q, strings.Repeat("=", len(rule)))
}

// Hooks returns agent hooks that print each turn as it happens.
func (p *Printer) Hooks() agent.Hooks {
	return agent.Hooks{
		OnTurnStart: func(_ context.Context, e *agent.TurnEvent) {
			fmt.Fprintf(p.w, "\n%s\n%s\n", p.color(fmt.Sprintf("Turn %d/%d", e.Turn, e.MaxTurns), "#a78bfa"), rule)
		},
		OnModelResponse: func(_ context.Context, e *agent.ModelEvent) {
			if e.Err != nil {
				return
			}
			fmt.Fprintf(p.w, "%s\n%s\n", p.bold("Assistant:"), e.Response)
		},
		OnToolCall: func(_ context.Context, e *agent.ToolEvent) {
			fmt.Fprintf(p.w, "\n%s %s\n  input:  %s\n", p.bold("Tool:"), e.Tool, e.Input)
		},
		OnToolReturn: func(_ context.Context, e *agent.ToolEvent) {
			if errors.Is(e.Err, core.ErrUnknownAction) {
				return
			}
			out := e.Output
			if e.Err != nil {
				out = p.color(out, "#fb7185")
			}
			fmt.Fprintf(p.w, "  result: %s\n", out)
		},
	}
}

// Outcome prints the terminal state of a session. Each failure class gets
// its own message so the user can tell them apart.
func (p *Printer) Outcome(res *agent.Result) {
	fmt.Fprintf(p.w, "\n%s\n", strings.Repeat("=", len(rule)))

	if res.Done() {
		fmt.Fprintln(p.w, p.color("Final answer", "#34d399"))
		fmt.Fprintln(p.w, p.Markdown(res.Answer))
		return
	}

	var (
		unknown *core.UnknownActionError
		budget  *core.TurnBudgetError
		gateway *core.GatewayError
		msg     string
	)
	switch {
	case errors.As(res.Err, &unknown):
		msg = fmt.Sprintf("Unknown action %q", unknown.Name)
		if len(unknown.Available) > 0 {
			msg += fmt.Sprintf(" (available: %s)", strings.Join(unknown.Available, ", "))
		}
	case errors.As(res.Err, &budget):
		msg = fmt.Sprintf("Turn limit reached: no answer within %d turns", budget.MaxTurns)
	case errors.As(res.Err, &gateway):
		msg = "Model request failed: " + gateway.Error()
	case res.Err != nil:
		msg = "Session aborted: " + res.Err.Error()
	default:
		msg = "Session did not finish"
	}
	fmt.Fprintln(p.w, p.color(msg, "#fb7185"))
}

// Markdown renders text through glamour unless in plain mode.
func (p *Printer) Markdown(text string) string {
	if p.render == nil {
		return text
	}
	out, err := p.render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Reply prints one chat reply.
func (p *Printer) Reply(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.color("AI:", "#818cf8"), p.Markdown(text))
}

// Error prints an error line.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, p.color("error: "+err.Error(), "#fb7185"))
}
