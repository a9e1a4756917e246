package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reactloop/internal/config"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the enabled tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry, err := config.BuildRegistry(cfg)
			if err != nil {
				return err
			}
			for _, t := range registry.Tools() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", t.Name(), t.Description())
			}
			return nil
		},
	}
}
