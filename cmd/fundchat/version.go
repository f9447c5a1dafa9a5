package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fundchat"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fundchat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fundchat version %s\n", strings.TrimSpace(fundchat.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
