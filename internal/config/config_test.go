package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.LookupEnv = func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		}
	}
}

func noDotenv(o *LoadOptions) { o.DotenvFiles = nil }

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, 5, cfg.MaxTurns)
	assert.Equal(t, "abort", cfg.UnknownAction)
	assert.Equal(t, AllTools, cfg.Tools)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reactloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: openai
model: gpt-4o-mini
max_turns: 3
tools: [calculate, weather]
shell_timeout: 2s
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path, noDotenv, envMap(map[string]string{
		"REACTLOOP_MAX_TURNS": "7",
		"OPENAI_API_KEY":      "sk-test",
	}))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 7, cfg.MaxTurns)
	assert.Equal(t, []string{"calculate", "weather"}, cfg.Tools)
	assert.Equal(t, 2*time.Second, cfg.ShellTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sk-test", cfg.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Dotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENROUTER_API_KEY=from-dotenv\nREACTLOOP_TOOLS=calculate\n"), 0o600))

	cfg, err := Load("", func(o *LoadOptions) {
		o.DotenvFiles = []string{envFile, filepath.Join(dir, "missing.env")}
	}, envMap(map[string]string{"REACTLOOP_TOOLS": "all"}))
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.APIKey)
	// the process environment wins over .env
	assert.Equal(t, AllTools, cfg.Tools)
}

func TestLoad_ProviderDefaults(t *testing.T) {
	env := map[string]string{
		"OPENROUTER_API_KEY": "sk-or",
		"OPENAI_API_KEY":     "sk-openai",
		"ANTHROPIC_API_KEY":  "sk-ant",
	}

	tests := []struct {
		name     string
		env      map[string]string
		override func(c *Config)
		provider string
		model    string
		key      string
	}{
		{
			name:     "default provider",
			provider: ProviderOpenRouter,
			model:    "anthropic/claude-sonnet-4.5",
			key:      "sk-or",
		},
		{
			name:     "provider from environment",
			env:      map[string]string{"REACTLOOP_PROVIDER": "anthropic"},
			provider: ProviderAnthropic,
			model:    "claude-3-5-sonnet-20241022",
			key:      "sk-ant",
		},
		{
			name:     "provider from override",
			override: func(c *Config) { c.Provider = ProviderAnthropic },
			provider: ProviderAnthropic,
			model:    "claude-3-5-sonnet-20241022",
			key:      "sk-ant",
		},
		{
			name:     "override wins over environment",
			env:      map[string]string{"REACTLOOP_PROVIDER": "anthropic"},
			override: func(c *Config) { c.Provider = ProviderOpenAI },
			provider: ProviderOpenAI,
			model:    "gpt-4o-mini",
			key:      "sk-openai",
		},
		{
			name:     "explicit model kept",
			override: func(c *Config) {
				c.Provider = ProviderOpenAI
				c.Model = "gpt-4.1"
			},
			provider: ProviderOpenAI,
			model:    "gpt-4.1",
			key:      "sk-openai",
		},
		{
			name:     "generic key wins",
			env:      map[string]string{"REACTLOOP_API_KEY": "sk-any"},
			override: func(c *Config) { c.Provider = ProviderAnthropic },
			provider: ProviderAnthropic,
			model:    "claude-3-5-sonnet-20241022",
			key:      "sk-any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{}
			for k, v := range env {
				vars[k] = v
			}
			for k, v := range tt.env {
				vars[k] = v
			}

			cfg, err := Load("", noDotenv, envMap(vars), func(o *LoadOptions) { o.Override = tt.override })
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.Provider)
			assert.Equal(t, tt.model, cfg.Model)
			assert.Equal(t, tt.key, cfg.APIKey)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noDotenv, envMap(nil))
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	_, err := Load("", noDotenv, envMap(map[string]string{"REACTLOOP_MAX_TURNS": "many"}))
	assert.ErrorContains(t, err, "REACTLOOP_MAX_TURNS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		err    string
	}{
		{"provider", func(c *Config) { c.Provider = "gemini" }, "unknown provider"},
		{"turns", func(c *Config) { c.MaxTurns = -1 }, "max_turns"},
		{"policy", func(c *Config) { c.UnknownAction = "retry" }, "unknown action policy"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"tool", func(c *Config) { c.Tools = []string{"search"} }, "unknown tool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b "))
	assert.Equal(t, AllTools, SplitList("all"))
	assert.Nil(t, SplitList(""))
}

func TestBuildRegistry(t *testing.T) {
	c := Default()
	c.NotesFile = filepath.Join(t.TempDir(), "memos.csv")
	c.Tools = []string{"shell_command", "read_memos", "calculate", "save_memo"}

	r, err := BuildRegistry(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"calculate", "save_memo", "read_memos", "shell_command"}, r.Names())
}

func TestBuildModel(t *testing.T) {
	c := Default()
	_, err := BuildModel(c)
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")

	c.APIKey = "k"
	m, err := BuildModel(c)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4.5", m.Info().Name)
	assert.Equal(t, "openai", m.Info().Provider)

	c.Provider = ProviderAnthropic
	c.Model = "claude-sonnet-4-5"
	m, err = BuildModel(c)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, "claude-sonnet-4-5", m.Info().Name)
}

func TestBuildLogger(t *testing.T) {
	c := Default()
	l, err := BuildLogger(c, os.Stderr)
	require.NoError(t, err)
	assert.NotNil(t, l)

	c.Log.Level = "nope"
	_, err = BuildLogger(c, os.Stderr)
	assert.Error(t, err)
}
