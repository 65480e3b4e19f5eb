// Package main is the entry point for the superpet game server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/superpet/superpet-api/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "superpet-api",
	Short: "Superpet game server",
	Long:  `Superpet serves the pet RPG rules engine over gRPC with a websocket battle feed.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
