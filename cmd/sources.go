package cmd

import (
	"fmt"

	"weekly-chronicle/internal/scraper"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "list-sources",
	Short: "List registered sources and which of them have stored data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		stored, err := st.ListSources()
		if err != nil {
			return err
		}
		hasData := make(map[string]bool, len(stored))
		for _, id := range stored {
			hasData[id] = true
		}

		for _, id := range scraper.Available() {
			status := "no data"
			if hasData[id] {
				status = "has data"
				delete(hasData, id)
			}
			if name := st.SourceName(id); name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %s\n", id, name, status)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %s\n", id, "-", status)
			}
		}
		// Stored sources without a registered producer are still listed; their
		// data remains readable after a scraper is retired.
		for _, id := range stored {
			if hasData[id] {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %s\n", id, st.SourceName(id), "has data (unregistered)")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
