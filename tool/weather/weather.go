// Package weather provides the "weather" tool, a current-conditions lookup
// against a wttr.in compatible HTTP service.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/reactloop/tool"
)

// Name is the action name of the weather tool.
const Name = "weather"

// DefaultBaseURL is the public wttr.in endpoint.
const DefaultBaseURL = "https://wttr.in"

// DefaultFormat asks wttr.in for a one-line "<condition> <temperature>" answer.
const DefaultFormat = "%C+%t"

// Options configures the weather tool.
type Options struct {
	BaseURL string
	Format  string
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Tool looks up current weather for a city.
type Tool struct {
	opts   Options
	client *http.Client
}

// New creates a weather tool.
func New(optFns ...func(o *Options)) *Tool {
	opts := Options{
		BaseURL: DefaultBaseURL,
		Format:  DefaultFormat,
		Timeout: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Tool{opts: opts, client: client}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return Name }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Return the current weather for a city, e.g. Tokyo"
}

// Call implements tool.Tool.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	city := strings.TrimSpace(input)
	if city == "" {
		return "", tool.NewToolError(Name, "city is required", tool.CodeInvalidInput)
	}

	// The format value is sent verbatim; wttr.in expects literal '%' and '+'.
	endpoint := strings.TrimRight(t.opts.BaseURL, "/") + "/" + url.PathEscape(city) + "?format=" + t.opts.Format

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", tool.NewToolError(Name, err.Error(), tool.CodeInvalidInput)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == nil && isTimeout(err) {
			return "", tool.NewToolError(Name, fmt.Sprintf("request timed out after %s", t.opts.Timeout), tool.CodeTimeout)
		}
		return "", tool.NewToolError(Name, err.Error(), tool.CodeExecutionError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", tool.NewToolError(Name, err.Error(), tool.CodeExecutionError)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &tool.ToolError{
			Tool:    Name,
			Message: fmt.Sprintf("weather service returned status %d", resp.StatusCode),
			Code:    tool.CodeExecutionError,
			Details: resp.StatusCode,
		}
	}

	return fmt.Sprintf("%s: %s", city, strings.TrimSpace(string(body))), nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	te, ok := err.(timeout)
	return ok && te.Timeout()
}
