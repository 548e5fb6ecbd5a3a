package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Root returns the root command of atlasctl.
func Root(factory servicesFactory) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "atlasctl",
		Short:         "Maintain the Atlas clusters of hackathon events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if output != outputJSON && output != outputYAML {
				return fmt.Errorf("unsupported output %q, use %q or %q", output, outputJSON, outputYAML)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputYAML, "Output format, json or yaml")

	printerFor := func(cmd *cobra.Command) printer {
		return newPrinter(cmd.OutOrStdout(), output)
	}

	cmd.AddCommand(Cleanup(factory, printerFor))
	cmd.AddCommand(CleanupEvent(factory, printerFor))
	cmd.AddCommand(List(factory, printerFor))
	cmd.AddCommand(Refresh(factory, printerFor))
	cmd.AddCommand(Delete(factory, printerFor))

	return cmd
}
