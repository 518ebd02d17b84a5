package commands

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
)

func connectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connection",
		Aliases: []string{"conn"},
		Short:   "Inspect live client connections",
	}

	cmd.AddCommand(connectionListCmd())
	cmd.AddCommand(connectionShowCmd())

	return cmd
}

// --- connection list ---

func connectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked connections",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := client.ListConnections(context.Background(),
				connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
			if err != nil {
				return fmt.Errorf("list connections: %w", err)
			}

			out, err := formatConnections(resp.Msg.GetConnections(), outputFormat)
			if err != nil {
				return fmt.Errorf("format connections: %w", err)
			}

			fmt.Print(out)

			return nil
		},
	}
}

// --- connection show ---

func connectionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <connection-id>",
		Short: "Show details of a single connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			resp, err := client.GetConnection(context.Background(),
				connect.NewRequest(&gameserverv1.GetConnectionRequest{ConnectionId: args[0]}))
			if err != nil {
				return fmt.Errorf("get connection: %w", err)
			}

			out, err := formatConnectionDetail(resp.Msg.GetConnection(), outputFormat)
			if err != nil {
				return fmt.Errorf("format connection: %w", err)
			}

			fmt.Print(out)

			return nil
		},
	}
}
