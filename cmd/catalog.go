package cmd

import (
	"fmt"

	"buck/config"
	"buck/core/catalog"
	"buck/logger"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the catalog in play order",
	Long:  `Scans the music directories the same way the daemon does and prints every track with its 1-based number, as used by "buck select".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		initLogging(cfg, true)
		defer logger.Sync()

		cat, err := catalog.Load(cfg.MusicDirs, cfg.Extensions)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, t := range cat.Tracks() {
			fmt.Fprintf(out, "%4d. %s\n", i+1, t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
