package main

import (
	"context"

	"github.com/aretw0/fundchat/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves suggestions, fund details and animation streams (SSE and WebSocket)
over HTTP, plus /metrics. With --mcp, the MCP tools are also served over SSE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		withMCP, _ := cmd.Flags().GetBool("mcp")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunServe(ctx, cli.ServeOptions{
			Options: globalOptions(cmd),
			Port:    port,
			WithMCP: withMCP,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().Bool("mcp", false, "Also serve MCP over SSE on mcp.port")
}
