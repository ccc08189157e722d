package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sirikali/internal/deps"
)

func newEnginesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "engines",
		Short: "Show which backends are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := deps.CheckEngines(ctx.registry(), ctx.config.Elevation.Enabled)
			if jsonOutput {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			tr := ctx.translator()
			for _, line := range renderSectionHeader("Engines", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range engineLines(results, tr, colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
