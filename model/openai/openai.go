// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. Because OpenRouter and most self-hosted gateways speak
// the same protocol, pointing BaseURL at them turns this adapter into a
// generic OpenAI-compatible client.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

const providerName = "openai"

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// BaseURL overrides the API endpoint (e.g. OpenRouterBaseURL).
	BaseURL string
	// APIKey overrides the key read from OPENAI_API_KEY.
	APIKey string
	// MaxRetries is the SDK-level retry count for a single completion.
	// Zero by default so one gateway call is one HTTP request.
	MaxRetries int
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
// It is constructed once per process and is read-only afterwards.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(opts.MaxRetries)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewOpenRouterModel creates a model talking to OpenRouter with the given key
// and model identifier (e.g. "anthropic/claude-sonnet-4.5").
func NewOpenRouterModel(apiKey, modelID string, optFns ...func(o *Options)) *Model {
	return NewModel(append([]func(o *Options){func(o *Options) {
		o.BaseURL = OpenRouterBaseURL
		o.APIKey = apiKey
		o.Model = modelID
	}}, optFns...)...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete implements model.Model with a single non-streaming completion.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return model.Response{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return model.Response{}, &core.GatewayError{
			Provider: providerName,
			Kind:     core.GatewayErrorServer,
			Err:      fmt.Errorf("no choices returned"),
		}
	}

	ch0 := resp.Choices[0]
	return model.Response{
		ID:           resp.ID,
		Content:      ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// buildParams assembles the OpenAI request parameters.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
}

// buildMessages converts conversation messages into OpenAI chat messages
// preserving order. An empty system prompt is omitted.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			if msg.Content == "" {
				continue
			}
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// classify maps SDK errors onto the gateway taxonomy.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return model.NewGatewayError(providerName, apiErr.StatusCode, err)
	}
	return model.NewGatewayError(providerName, 0, err)
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: providerName,
	}
}
