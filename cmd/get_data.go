package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"weekly-chronicle/internal/week"

	"github.com/spf13/cobra"
)

var (
	getDataView   bool
	getDataOutput string
)

var getDataCmd = &cobra.Command{
	Use:   "get-data <source> [date]",
	Short: "Print or export the weekly bucket covering a date",
	Long: "Resolves the given date (default: today) to its week and prints that " +
		"bucket. With --output the JSON is written to a file instead; --view " +
		"renders a human-readable listing.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		sourceID := args[0]

		date := time.Now()
		if len(args) == 2 {
			date, err = week.ParseDate(args[1])
			if err != nil {
				return err
			}
		}
		wk := st.Weeks().Start(date)

		b, err := st.GetByDate(sourceID, date)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("no data for %s in week %s", sourceID, wk.Format(week.DateLayout))
		}

		if getDataView {
			fmt.Fprintf(cmd.OutOrStdout(), "%s — week %s — %d records\n",
				b.Meta.SourceName, wk.Format(week.DateLayout), len(b.Data))
			for _, rec := range b.Data {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s (%d comments)\n",
					rec.Score, rec.Title, len(rec.Comments))
			}
			return nil
		}

		out, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		if getDataOutput != "" {
			if err := os.WriteFile(getDataOutput, append(out, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", getDataOutput)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
		return nil
	},
}

func init() {
	getDataCmd.Flags().BoolVar(&getDataView, "view", false, "render a human-readable listing")
	getDataCmd.Flags().StringVar(&getDataOutput, "output", "", "write bucket JSON to this file")
	rootCmd.AddCommand(getDataCmd)
}
