package cmd

import (
	"fmt"

	"weekly-chronicle/internal/week"

	"github.com/spf13/cobra"
)

var weeksCmd = &cobra.Command{
	Use:   "list-weeks <source>",
	Short: "List stored weeks for a source, live and archived",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		sourceID := args[0]

		live, err := st.ListWeeks(sourceID)
		if err != nil {
			return err
		}
		archived, err := st.ListArchivedWeeks(sourceID)
		if err != nil {
			return err
		}
		if len(live) == 0 && len(archived) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no data for source %q\n", sourceID)
			return nil
		}

		for _, wk := range live {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", wk.Format(week.DateLayout))
		}
		for _, wk := range archived {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (archived)\n", wk.Format(week.DateLayout))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weeksCmd)
}
