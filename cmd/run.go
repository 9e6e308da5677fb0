package cmd

import (
	"fmt"

	"weekly-chronicle/internal/scraper"
	"weekly-chronicle/worker"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <source|all>",
	Short: "Scrape a source and merge the batch into the current week",
	Long: "Runs the named producer (or every registered producer with \"all\") and " +
		"merges the scraped records into this week's bucket. Records already " +
		"present keep their position; new ones are appended.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		httpc, err := newFetchClient(cfg)
		if err != nil {
			return err
		}

		var ids []string
		if args[0] == "all" {
			ids = scraper.Available()
		} else {
			ids = []string{args[0]}
		}

		producers := make([]scraper.Producer, 0, len(ids))
		for _, id := range ids {
			p, err := scraper.New(id, cfg, httpc)
			if err != nil {
				return err
			}
			producers = append(producers, p)
		}

		r := &worker.Runner{Store: st}
		results := r.Run(cmd.Context(), producers)

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.SourceID, res.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: week %s now holds %d records\n",
				res.SourceID, res.Week.Format("2006-01-02"), res.Records)
		}
		if failed == len(results) {
			return fmt.Errorf("all %d sources failed", failed)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
