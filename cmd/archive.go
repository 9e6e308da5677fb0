package cmd

import (
	"errors"
	"fmt"
	"time"

	"weekly-chronicle/internal/store"

	"github.com/spf13/cobra"
)

var archiveWeeks int

var archiveCmd = &cobra.Command{
	Use:   "archive [source|all]",
	Short: "Move buckets older than the retention window into the archive",
	Long: "Moves every live bucket strictly older than the retention cutoff into " +
		"the archive tree. Archived weeks stay readable. Running again is a no-op.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		retention := archiveWeeks
		if retention <= 0 {
			retention = cfg.Store.RetentionWeeks
		}

		var sources []string
		if len(args) == 0 || args[0] == "all" {
			sources, err = st.ListSources()
			if err != nil {
				return err
			}
		} else {
			sources = []string{args[0]}
		}

		now := time.Now()
		failedSources := 0
		for _, id := range sources {
			n, err := st.ArchiveOlder(id, retention, now)
			if err != nil {
				failedSources++
				var ae *store.ArchiveError
				if errors.As(err, &ae) {
					// Some weeks may still have moved before the failure.
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: archived %d, failed %d week(s)\n",
						id, ae.Archived, len(ae.Failures))
					for wk, werr := range ae.Failures {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", wk, werr)
					}
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: archived %d week(s)\n", id, n)
		}
		if failedSources > 0 {
			return fmt.Errorf("archiving failed for %d of %d sources", failedSources, len(sources))
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().IntVar(&archiveWeeks, "weeks", 0, "retention in weeks (default: store.retention_weeks)")
	rootCmd.AddCommand(archiveCmd)
}
