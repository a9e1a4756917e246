// Package config loads CLI configuration. Sources are applied in order,
// later ones winning: built-in defaults, a YAML file, a .env file plus the
// process environment, and finally command-line flags (applied by the
// caller through LoadOptions.Override). The model and API key depend on the
// provider and are resolved last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/logging"
)

// Providers understood by BuildModel.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
)

// DefaultFile is read when no explicit config path is given and it exists.
const DefaultFile = "reactloop.yaml"

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderOpenRouter: "anthropic/claude-sonnet-4.5",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-3-5-sonnet-20241022",
}

// AllTools lists every bundled tool in prompt order.
var AllTools = []string{"calculate", "weather", "save_memo", "read_memos", "shell_command"}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the resolved CLI configuration.
type Config struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"-"`
	MaxTurns      int           `yaml:"max_turns"`
	UnknownAction string        `yaml:"unknown_action"`
	Tools         []string      `yaml:"tools"`
	NotesFile     string        `yaml:"notes_file"`
	WeatherURL    string        `yaml:"weather_url"`
	ShellTimeout  time.Duration `yaml:"shell_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent_queries"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	Plain         bool          `yaml:"plain"`
	Log           LogConfig     `yaml:"log"`
}

// Default returns the built-in configuration: OpenRouter, five turns, every
// tool enabled. Model is left empty and resolved per provider by Load.
func Default() *Config {
	return &Config{
		Provider:      ProviderOpenRouter,
		MaxTurns:      core.DefaultMaxTurns,
		UnknownAction: agent.UnknownActionAbort.String(),
		Tools:         append([]string(nil), AllTools...),
		NotesFile:     "memos.csv",
		WeatherURL:    "https://wttr.in",
		ShellTimeout:  5 * time.Second,
		MaxConcurrent: 4,
		Log:           LogConfig{Level: "warn", Format: "text"},
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	// DotenvFiles are read when present; earlier files and the process
	// environment take precedence. The process environment is not modified.
	DotenvFiles []string
	// LookupEnv overrides os.LookupEnv, mainly for tests.
	LookupEnv func(key string) (string, bool)
	// Override runs after the environment is applied and before the model
	// and API key are resolved for the final provider.
	Override func(c *Config)
}

// Load resolves configuration from path (or DefaultFile when path is empty
// and the file exists), .env files and the environment.
func Load(path string, optFns ...func(o *LoadOptions)) (*Config, error) {
	opts := LoadOptions{
		DotenvFiles: []string{".env"},
		LookupEnv:   os.LookupEnv,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	dotenv := map[string]string{}
	for _, f := range opts.DotenvFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		for k, v := range vars {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}

	// The process environment wins over .env files.
	lookup := func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if opts.Override != nil {
		opts.Override(cfg)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModels[cfg.Provider]
	}
	cfg.resolveAPIKey(lookup)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("REACTLOOP_PROVIDER", &c.Provider)
	str("REACTLOOP_MODEL", &c.Model)
	str("REACTLOOP_BASE_URL", &c.BaseURL)
	str("REACTLOOP_UNKNOWN_ACTION", &c.UnknownAction)
	str("REACTLOOP_NOTES_FILE", &c.NotesFile)
	str("REACTLOOP_WEATHER_URL", &c.WeatherURL)
	str("REACTLOOP_METRICS_ADDR", &c.MetricsAddr)
	str("REACTLOOP_LOG_LEVEL", &c.Log.Level)
	str("REACTLOOP_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("REACTLOOP_TOOLS"); ok && v != "" {
		c.Tools = SplitList(v)
	}
	if v, ok := lookup("REACTLOOP_MAX_TURNS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REACTLOOP_MAX_TURNS: %w", err)
		}
		c.MaxTurns = n
	}
	if v, ok := lookup("REACTLOOP_SHELL_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REACTLOOP_SHELL_TIMEOUT: %w", err)
		}
		c.ShellTimeout = d
	}
	if v, ok := lookup("REACTLOOP_PLAIN"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REACTLOOP_PLAIN: %w", err)
		}
		c.Plain = b
	}
	return nil
}

// resolveAPIKey picks the credential variable matching the provider.
func (c *Config) resolveAPIKey(lookup func(string) (string, bool)) {
	keys := []string{"REACTLOOP_API_KEY"}
	switch c.Provider {
	case ProviderOpenRouter:
		keys = append(keys, "OPENROUTER_API_KEY")
	case ProviderOpenAI:
		keys = append(keys, "OPENAI_API_KEY")
	case ProviderAnthropic:
		keys = append(keys, "ANTHROPIC_API_KEY")
	}
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			c.APIKey = v
			return
		}
	}
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("max_turns must not be negative, got %d", c.MaxTurns)
	}
	if _, err := agent.ParseUnknownActionPolicy(c.UnknownAction); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	for _, name := range c.Tools {
		if !knownTool(name) {
			return fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(AllTools, ", "))
		}
	}
	return nil
}

func knownTool(name string) bool {
	for _, t := range AllTools {
		if t == name {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated list, dropping blanks. "all" expands
// to AllTools.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "all" {
			out = append(out, AllTools...)
			continue
		}
		out = append(out, part)
	}
	return out
}
