package main

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/fundchat/internal/cli"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:     "suggest <text>",
	Short:   "Print the suggestions for an input buffer as JSON",
	Example: `  fundchat suggest "tell me about @Blu"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunSuggest(ctx, globalOptions(cmd), strings.Join(args, " "), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
