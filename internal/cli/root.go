// Package cli implements the scg-mediator command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/next-trace/scg-mediator/internal/config"
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{forwarder: dialForwarder})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scg-mediator",
		Short: "Dispatch demo requests and notifications through an in-process mediator",
		Long: `scg-mediator registers the demo handler sources into a registry and dispatches
requests and notifications through the mediator resolved from it.

Examples:
  scg-mediator send echo --message hello
  scg-mediator publish ping --from ops
  scg-mediator sources --prefix demo.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}

			if a.verbose {
				cfg.Logging.Level = "debug"
			}

			a.cfg = cfg

			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to config file (default ./mediator.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(newSendCommand(a))
	rootCmd.AddCommand(newPublishCommand(a))
	rootCmd.AddCommand(newSourcesCommand(a))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
