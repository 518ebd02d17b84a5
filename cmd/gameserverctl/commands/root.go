// Package commands implements the gameserverctl CLI commands.
package commands

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/hytale-oss/gameserver/pkg/gameserverpb/v1/gameserverv1connect"
)

var (
	// client is the ConnectRPC game session service client, initialized
	// in PersistentPreRunE.
	client gameserverv1connect.GameSessionServiceClient

	// outputFormat controls the output format for all commands (table or json).
	outputFormat string

	// serverAddr is the daemon address (host:port) for the ConnectRPC connection.
	serverAddr string
)

// rootCmd is the top-level cobra command for gameserverctl.
var rootCmd = &cobra.Command{
	Use:   "gameserverctl",
	Short: "CLI client for the Hytale game session server",
	Long:  "gameserverctl communicates with the gameserver daemon via ConnectRPC to inspect live connections.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		client = gameserverv1connect.NewGameSessionServiceClient(
			http.DefaultClient,
			"http://"+serverAddr,
		)

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:50051",
		"gameserver daemon address (host:port)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table",
		"output format: table, json")

	rootCmd.AddCommand(connectionCmd())
	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(shellCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
