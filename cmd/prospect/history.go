package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/prospect/pkg/activity"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recorded scrape and posting activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			events, err := a.journal.Events()
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no activity logged yet")
				return nil
			}

			counts, err := a.journal.Summary()
			if err != nil {
				return err
			}
			for _, typ := range activity.Types(events) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d\n", typ, counts[typ])
			}

			last := events[len(events)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "\ntotal: %d, last: %s at %s\n",
				len(events), last.Type, last.Timestamp.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
