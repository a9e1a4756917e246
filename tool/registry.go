package tool

import (
	"context"
	"fmt"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/hupe1980/reactloop/core"
)

// validName mirrors the name class accepted by the action parser (Unicode
// letters, digits and underscore), so a registered tool can always be
// addressed by a directive.
var validName = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

// Observation is the outcome of one dispatch. Text is always populated: on
// handler failure it carries the formatted error so the loop can hand it back
// to the model.
type Observation struct {
	Tool     string        `json:"tool"`
	Input    string        `json:"input"`
	Text     string        `json:"text"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the handler failed.
func (o Observation) Failed() bool { return o.Err != nil }

// Registry resolves action names to tools. It is immutable after
// construction and therefore safe to share between concurrent sessions.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from tools. Names must be non-empty
// identifiers and unique.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil {
			return nil, fmt.Errorf("tool registry: nil tool")
		}
		name := t.Name()
		if !validName.MatchString(name) {
			return nil, fmt.Errorf("tool registry: invalid tool name %q", name)
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("tool registry: duplicate tool name %q", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for
// examples and tests with static tool sets.
func MustRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Dispatch executes the tool registered under name with input.
//
// An unregistered name yields *core.UnknownActionError and no observation.
// Every other failure, including a panic inside the handler, is absorbed
// into the returned Observation (Text = "<name> error: <detail>", Err set)
// and the returned error is nil.
func (r *Registry) Dispatch(ctx context.Context, name, input string) (Observation, error) {
	t, ok := r.tools[name]
	if !ok {
		return Observation{}, &core.UnknownActionError{Name: name, Available: r.Names()}
	}

	start := time.Now()
	out, err := call(ctx, t, input)
	obs := Observation{Tool: name, Input: input, Duration: time.Since(start)}
	if err != nil {
		obs.Err = err
		obs.Text = FormatError(name, err)
		return obs, nil
	}
	obs.Text = out
	return obs, nil
}

func call(ctx context.Context, t Tool, input string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("panic recovered: %v", rec),
				Code:    CodePanic,
				Details: string(debug.Stack()),
			}
		}
	}()
	return t.Call(ctx, input)
}

// FormatError renders a handler failure as observation text.
func FormatError(name string, err error) string {
	return fmt.Sprintf("%s error: %s", name, Detail(err))
}
