package cmd

import (
	"fmt"

	"weekly-chronicle/internal/icon"

	"github.com/spf13/cobra"
)

var uploadIconCmd = &cobra.Command{
	Use:   "upload-icon <source> <file>",
	Short: "Install a source icon, re-encoded as webp",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := newStore(cfg)
		if err != nil {
			return err
		}
		sourceID, srcPath := args[0], args[1]

		name, err := icon.Install(srcPath, cfg.Store.IconsRoot, sourceID)
		if err != nil {
			return err
		}
		if err := st.SetIcon(sourceID, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed icon %s for %s\n", name, sourceID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadIconCmd)
}
