package main

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/fundchat/internal/cli"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/spf13/cobra"
)

var animateCmd = &cobra.Command{
	Use:   "animate <text>",
	Short: "Type out text one character at a time",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunk, _ := cmd.Flags().GetInt("chunk")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunAnimate(ctx, globalOptions(cmd), strings.Join(args, " "), chunk, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(animateCmd)
	animateCmd.Flags().Int("chunk", domain.DefaultChunkSize, "Maximum characters per paragraph")
}
