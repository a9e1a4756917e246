package tool

import (
	"context"
	"errors"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Error semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	echo := NewFunctionTool("echo", "Repeat the input", func(_ context.Context, in string) (string, error) {
//	  return in, nil
//	})
func NewFunctionTool(name, description string, fn func(ctx context.Context, input string) (string, error)) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		fn:          fn,
	}
}

// Name returns the unique tool name used in action directives.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Call invokes the underlying function and normalizes failures to *ToolError.
func (t *FunctionTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.fn(ctx, input)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return "", toolErr
		}
		return "", &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecutionError,
		}
	}
	return out, nil
}
