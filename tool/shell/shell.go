// Package shell provides the "shell_command" tool. Commands run through
// "sh -c" with a hard timeout after passing a substring denylist.
//
// The denylist is a speed bump, not a sandbox. Do not expose this tool to
// untrusted prompts.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hupe1980/reactloop/tool"
)

// Name is the action name of the shell tool.
const Name = "shell_command"

// DefaultTimeout bounds a single command.
const DefaultTimeout = 5 * time.Second

// DefaultDenylist holds substrings that reject a command outright. Matching
// is case-insensitive.
var DefaultDenylist = []string{"rm", "sudo", "dd", "mkfs", "format", ":(){", "wget", "curl -o"}

// Options configures the shell tool.
type Options struct {
	Timeout  time.Duration
	Denylist []string
	Shell    string
	Dir      string
}

// Tool executes shell commands.
type Tool struct {
	opts Options
}

// New creates a shell tool.
func New(optFns ...func(o *Options)) *Tool {
	opts := Options{
		Timeout:  DefaultTimeout,
		Denylist: DefaultDenylist,
		Shell:    "sh",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Tool{opts: opts}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return Name }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Run a shell command and return its output, e.g. ls -la (dangerous commands are refused)"
}

// Denied returns the first denylist entry found in command.
func (t *Tool) Denied(command string) (string, bool) {
	lower := strings.ToLower(command)
	for _, d := range t.opts.Denylist {
		if d != "" && strings.Contains(lower, strings.ToLower(d)) {
			return d, true
		}
	}
	return "", false
}

// Call implements tool.Tool.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	command := strings.TrimSpace(input)
	if command == "" {
		return "", tool.NewToolError(Name, "command is required", tool.CodeInvalidInput)
	}
	if d, denied := t.Denied(command); denied {
		return "", &tool.ToolError{
			Tool:    Name,
			Message: fmt.Sprintf("dangerous command %q detected, refusing to run", d),
			Code:    tool.CodeDenied,
			Details: d,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.opts.Shell, "-c", command)
	cmd.Dir = t.opts.Dir
	// Do not wait on pipes held open by orphaned grandchildren.
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", tool.NewToolError(Name, fmt.Sprintf("command timed out after %s", t.opts.Timeout), tool.CodeTimeout)
	}

	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := fmt.Sprintf("exit status %d", exitErr.ExitCode())
			if errOut != "" {
				msg += ": " + errOut
			}
			if out != "" {
				msg += "\noutput: " + out
			}
			return "", &tool.ToolError{Tool: Name, Message: msg, Code: tool.CodeExecutionError, Details: out}
		}
		return "", tool.NewToolError(Name, err.Error(), tool.CodeExecutionError)
	}

	if errOut != "" {
		if out != "" {
			out += "\n"
		}
		out += "stderr: " + errOut
	}
	if out == "" {
		return "command completed with no output", nil
	}
	return out, nil
}
