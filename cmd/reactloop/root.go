package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/reactloop/internal/config"
	"github.com/hupe1980/reactloop/model"
)

// newModel is replaced in tests.
var newModel = config.BuildModel

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reactloop",
		Short: "reactloop runs a Reason-and-Act agent over local tools",
		Long: `reactloop lets a language model alternate between reasoning, calling tools
(calculator, weather, memos, shell) and answering. Each question runs for at
most --max-turns model calls.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (default ./reactloop.yaml if present)")
	pf.String("provider", "", "Model provider: openrouter, openai or anthropic")
	pf.String("model", "", "Model identifier")
	pf.String("base-url", "", "Override the provider API base URL")
	pf.Int("max-turns", 0, "Maximum model calls per question")
	pf.String("tools", "", "Comma separated tools to enable, or 'all'")
	pf.String("notes-file", "", "CSV file used by save_memo and read_memos")
	pf.String("unknown-action", "", "What to do when the model names an unknown tool: abort or report")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.Bool("plain", false, "Disable colours and markdown rendering")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")

	rootCmd.AddCommand(newRunCmd(), newAskCmd(), newChatCmd(), newToolsCmd(), newVersionCmd())

	return rootCmd
}

// Execute builds the command tree and runs it.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration with explicitly set flags applied on
// top, before the model and API key are chosen for the final provider.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, func(o *config.LoadOptions) {
		o.Override = func(c *config.Config) { applyFlags(flags, c) }
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("provider", &cfg.Provider)
	str("model", &cfg.Model)
	str("base-url", &cfg.BaseURL)
	str("notes-file", &cfg.NotesFile)
	str("unknown-action", &cfg.UnknownAction)
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("metrics-addr", &cfg.MetricsAddr)

	if flags.Changed("max-turns") {
		cfg.MaxTurns, _ = flags.GetInt("max-turns")
	}
	if flags.Changed("tools") {
		v, _ := flags.GetString("tools")
		cfg.Tools = config.SplitList(v)
	}
	if flags.Changed("plain") {
		cfg.Plain, _ = flags.GetBool("plain")
	}
}

// buildModel creates the gateway once per process invocation.
func buildModel(cfg *config.Config) (model.Model, error) {
	m, err := newModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return m, nil
}
