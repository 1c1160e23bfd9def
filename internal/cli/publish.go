package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/next-trace/scg-mediator/internal/demo"
)

// newPublishCommand creates the publish command group
func newPublishCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a notification to every handler",
	}

	cmd.AddCommand(newPublishPingCommand(a))

	return cmd
}

func newPublishPingCommand(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Publish a Pinged notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			return s.mediator.Publish(cmd.Context(), demo.Pinged{From: from, At: time.Now().UTC()})
		},
	}

	cmd.Flags().StringVar(&from, "from", "cli", "Sender name carried by the notification")

	return cmd
}
