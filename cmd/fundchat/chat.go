package main

import (
	"context"

	"github.com/aretw0/fundchat/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Long: `Reads lines from stdin. End a line with "@" and part of a fund name to see
suggestions, pick one with "#N", submit with an empty line and quit with ":q".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunChat(ctx, globalOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
