package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/internal/presentation"
)

// exitWords end the chat loop.
var exitWords = map[string]bool{"quit": true, "exit": true, "終了": true}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a multi-turn conversation that remembers earlier messages",
		Long: `Reads lines from standard input and keeps the whole history in every
request. Type quit, exit or 終了 to leave.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			system, _ := cmd.Flags().GetString("system")

			m, err := buildModel(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := presentation.NewPrinter(out, cfg.Plain)
			chat := agent.NewChat(m, system)

			fmt.Fprintln(out, "Type quit, exit or 終了 to leave.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\nYou: ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if exitWords[strings.ToLower(line)] {
					break
				}

				resp, err := chat.Send(cmd.Context(), line)
				if err != nil {
					printer.Error(err)
					continue
				}
				printer.Reply(resp.Content)
			}

			fmt.Fprintf(out, "\nBye! (%d messages exchanged)\n", chat.Conversation().Len()-1)
			return scanner.Err()
		},
	}
	cmd.Flags().String("system", "", "System prompt defining the assistant's role")
	return cmd
}
