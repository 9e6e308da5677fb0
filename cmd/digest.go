package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"weekly-chronicle/internal/ai"
	"weekly-chronicle/internal/digest"
	"weekly-chronicle/internal/week"

	"github.com/spf13/cobra"
)

var digestOutput string

var digestCmd = &cobra.Command{
	Use:   "digest <source> [date]",
	Short: "Render a markdown digest of a source's week",
	Long: "Builds a markdown digest of the top records in the week covering the " +
		"given date (default: today). When an OpenAI API key is configured each " +
		"item gets a short AI summary; without one the digest is rendered as-is.",
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

		var summarizer ai.Summarizer
		if cfg.OpenAI.APIKey != "" {
			summarizer = ai.NewOpenAI(ai.Config{
				APIKey:  cfg.OpenAI.APIKey,
				Model:   cfg.OpenAI.Model,
				BaseURL: cfg.OpenAI.BaseURL,
			})
		}

		md, err := digest.Build(cmd.Context(), b, wk, cfg.Digest.TopN, summarizer)
		if err != nil {
			return err
		}

		out := digestOutput
		if out == "" {
			if err := os.MkdirAll(cfg.Digest.OutputDir, 0o755); err != nil {
				return err
			}
			out = filepath.Join(cfg.Digest.OutputDir,
				fmt.Sprintf("%s-%s.md", sourceID, wk.Format(week.DateLayout)))
		}
		if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestOutput, "output", "", "write the digest to this file")
	rootCmd.AddCommand(digestCmd)
}
