package hisn

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var dataClearYes bool

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage stored data",
}

var dataClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all progress, settings, personal adhkar and caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !dataClearYes {
			return fmt.Errorf("this deletes all local data; re-run with --yes to confirm")
		}
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.ClearAll(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d stored row(s)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataClearCmd)
	dataClearCmd.Flags().BoolVar(&dataClearYes, "yes", false, "Confirm deletion")
}
