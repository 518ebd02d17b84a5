package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
)

func monitorCmd() *cobra.Command {
	var includeCurrent bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream connection lifecycle and state-transition events",
		Long:  "Connects to the gameserver daemon and streams connection events until interrupted (Ctrl+C).",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stream, err := client.WatchConnections(ctx, connect.NewRequest(&gameserverv1.WatchConnectionsRequest{
				IncludeCurrent: includeCurrent,
			}))
			if err != nil {
				return fmt.Errorf("watch connections: %w", err)
			}
			defer stream.Close()

			for stream.Receive() {
				msg := stream.Msg()

				out, fmtErr := formatEvent(msg, outputFormat)
				if fmtErr != nil {
					return fmt.Errorf("format event: %w", fmtErr)
				}

				fmt.Println(out)
			}

			if err := stream.Err(); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}

				return fmt.Errorf("stream error: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&includeCurrent, "current", false,
		"include current connections before streaming changes")

	return cmd
}
