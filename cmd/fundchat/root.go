package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fundchat/internal/cli"
	"github.com/aretw0/fundchat/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fundchat",
	Short: "fundchat is a conversational mutual-fund assistant",
	Long: `fundchat suggests funds as you type "@" mentions and types out their
NAV history. It runs as a terminal chat, an HTTP/SSE server or an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")

	// 'chat' is the default command.
	rootCmd.RunE = chatCmd.RunE
}

func globalOptions(cmd *cobra.Command) cli.Options {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{ConfigPath: path, Debug: debug}
}
