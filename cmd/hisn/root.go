package hisn

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/logging"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hisn",
	Short: "hisn tracks daily adhkar, streaks and prayer times from your terminal",
	Long:  "hisn is a local-first companion for daily remembrance: dhikr counters, streaks and a progress calendar, prayer times with offline fallback, and a Quran reader.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(cmd.ErrOrStderr(), verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to hisn.yaml (default: next to the database)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}
