package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent create, mount and unmount operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.history()
			if store == nil {
				return errors.New("history database unavailable")
			}
			events, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, events)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No operations recorded")
				return nil
			}
			tr := ctx.translator()
			rows := make([][]string, 0, len(events))
			for _, ev := range events {
				engine := ev.Engine
				if engine != "" {
					engine = tr.DisplayName(engine)
				}
				rows = append(rows, []string{
					ev.StartedAt.Local().Format(historyTimeLayout),
					string(ev.Operation),
					engine,
					ev.CipherFolder,
					ev.Status,
					fmt.Sprintf("%d", ev.ExitCode),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Time", "Operation", "Engine", "Volume", "Status", "Exit"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of operations to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
