package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reactloop/core"
	"github.com/hupe1980/reactloop/internal/presentation"
	"github.com/hupe1980/reactloop/model"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single prompt to the model without tools or system prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				if prompt, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if prompt == "" {
				return errors.New("no prompt given")
			}

			m, err := buildModel(cfg)
			if err != nil {
				return err
			}

			resp, err := m.Complete(cmd.Context(), model.Request{
				Messages: []core.Message{{Role: core.RoleUser, Content: prompt}},
			})
			if err != nil {
				return err
			}

			presentation.NewPrinter(cmd.OutOrStdout(), cfg.Plain).Reply(resp.Content)
			return nil
		},
	}
}
