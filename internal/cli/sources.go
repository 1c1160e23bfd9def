package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registrar"
)

// newSourcesCommand creates the sources command
func newSourcesCommand(a *app) *cobra.Command {
	var prefixes []string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the registration sources known to the process",
		Long: `List every source of the default inventory with its message contracts and
components. With --prefix only sources selected by those name prefixes are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var srcs []*registrar.Source

			for _, src := range registrar.Default.Sources() {
				if matches(src, prefixes) {
					srcs = append(srcs, src)
				}
			}

			printSources(cmd.OutOrStdout(), srcs)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&prefixes, "prefix", nil, "Only show sources whose name starts with a prefix")

	return cmd
}

func matches(src *registrar.Source, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}

	return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(src.Name(), p) })
}

func printSources(w io.Writer, srcs []*registrar.Source) {
	name := color.New(color.FgCyan, color.Bold)
	kind := color.New(color.FgYellow)

	if len(srcs) == 0 {
		fmt.Fprintln(w, "no sources")
		return
	}

	for _, src := range srcs {
		name.Fprintln(w, src.Name())

		for _, c := range src.Contracts() {
			fmt.Fprintf(w, "  %s %s\n", kind.Sprint(contractKind(c)), describe(c))
		}

		for _, comp := range src.Components() {
			fmt.Fprintf(w, "  %s %s\n", kind.Sprint("component"), comp.Type())
		}
	}
}

func contractKind(c mediator.Contract) string {
	if c.IsRequest() {
		return "request"
	}

	return "notification"
}

func describe(c mediator.Contract) string {
	if c.IsRequest() {
		return fmt.Sprintf("%s -> %s", c.MessageType(), c.ResponseType())
	}

	return c.MessageType().String()
}
