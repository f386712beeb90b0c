package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/study-resource-bot/pkg/messaging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long: `chat reads one message per line from stdin and prints the bot's replies,
running the same dialogue as the WhatsApp webhook. Type /quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		from, _ := cmd.Flags().GetString("from")
		dialogue, err := rt.dialogue(ctx, messaging.NewConsoleMessenger(cmd.OutOrStdout()))
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "/quit" {
				return nil
			}
			dialogue.Handle(ctx, from, line)
			fmt.Fprint(cmd.OutOrStdout(), "> ")
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().String("from", "console", "sender identity used for the session")
	rootCmd.AddCommand(chatCmd)
}
