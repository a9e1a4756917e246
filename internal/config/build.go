package config

import (
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/reactloop/logging"
	"github.com/hupe1980/reactloop/model"
	anthropicmodel "github.com/hupe1980/reactloop/model/anthropic"
	openaimodel "github.com/hupe1980/reactloop/model/openai"
	"github.com/hupe1980/reactloop/tool"
	"github.com/hupe1980/reactloop/tool/calculator"
	"github.com/hupe1980/reactloop/tool/notes"
	"github.com/hupe1980/reactloop/tool/shell"
	"github.com/hupe1980/reactloop/tool/weather"
)

// BuildModel constructs the gateway client for the configured provider. It
// is called once per process; the client is read-only afterwards.
func BuildModel(c *Config) (model.Model, error) {
	modelID := c.Model
	if modelID == "" {
		modelID = DefaultModels[c.Provider]
	}

	switch c.Provider {
	case ProviderOpenRouter:
		if c.APIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
		}
		return openaimodel.NewOpenRouterModel(c.APIKey, modelID, func(o *openaimodel.Options) {
			if c.BaseURL != "" {
				o.BaseURL = c.BaseURL
			}
		}), nil
	case ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = modelID
			o.BaseURL = c.BaseURL
			o.APIKey = c.APIKey
		}), nil
	case ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(modelID)
			o.BaseURL = c.BaseURL
			o.APIKey = c.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// BuildRegistry instantiates the configured tools in AllTools order. The two
// memo tools share one store.
func BuildRegistry(c *Config) (*tool.Registry, error) {
	enabled := make(map[string]bool, len(c.Tools))
	for _, name := range c.Tools {
		enabled[name] = true
	}

	var store *notes.Store
	memoStore := func() *notes.Store {
		if store == nil {
			store = notes.NewStore(c.NotesFile)
		}
		return store
	}

	var tools []tool.Tool
	for _, name := range AllTools {
		if !enabled[name] {
			continue
		}
		switch name {
		case calculator.Name:
			tools = append(tools, calculator.New())
		case weather.Name:
			tools = append(tools, weather.New(func(o *weather.Options) {
				if c.WeatherURL != "" {
					o.BaseURL = c.WeatherURL
				}
			}))
		case notes.SaveName:
			tools = append(tools, notes.NewSaveTool(memoStore()))
		case notes.ReadName:
			tools = append(tools, notes.NewReadTool(memoStore()))
		case shell.Name:
			tools = append(tools, shell.New(func(o *shell.Options) { o.Timeout = c.ShellTimeout }))
		}
	}
	return tool.NewRegistry(tools...)
}

// BuildLogger constructs the structured logger writing to w.
func BuildLogger(c *Config, w io.Writer) (*logging.StructuredLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    c.Log.Format,
		Output:    w,
		Component: "cli",
	}), nil
}
