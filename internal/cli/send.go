package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/next-trace/scg-mediator/internal/demo"
	"github.com/next-trace/scg-mediator/mediator"
)

// newSendCommand creates the send command group
func newSendCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a request to its single handler",
	}

	cmd.AddCommand(newSendEchoCommand(a))

	return cmd
}

func newSendEchoCommand(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Send an Echo request and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			res, err := mediator.Send[string](cmd.Context(), s.mediator, demo.Echo{Message: message})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res)

			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Message to echo")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
