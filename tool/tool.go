// Package tool implements the tool calling subsystem of the agent loop: a
// minimal Tool contract (text in, text out), a function adapter, and a static
// Registry that resolves action names and converts handler failures into
// observation text the model can react to.
package tool

import (
	"context"
	"errors"
	"fmt"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// The model requests a tool by emitting a directive line naming it; the
// argument is passed verbatim as input. Tools may perform computations,
// network calls or process execution. Any safety policy (timeouts,
// denylists) belongs to the tool itself; the Registry imposes none.
//
// Tool implementations should:
//   - Provide a short identifier-style name (letters, digits, underscore)
//   - Describe input format in Description so prompts can list it
//   - Return an error instead of panicking
//   - Be safe for concurrent use; one instance is shared by every session
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Call executes the tool with the raw directive argument.
	Call(ctx context.Context, input string) (string, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes used by the bundled tools.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeExecutionError = "EXECUTION_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeDenied         = "DENIED"
	CodePanic          = "PANIC"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Detail returns the human readable failure detail of err. For a *ToolError
// this is the bare message without the code and tool prefix.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
