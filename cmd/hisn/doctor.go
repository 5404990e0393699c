package hisn

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			now := time.Now()
			report, err := service.RunDoctor(sqldb, doctorFix, now)
			if err != nil {
				return err
			}
			corrupt := "none"
			if len(report.CorruptRecords) > 0 {
				corrupt = strings.Join(report.CorruptRecords, ", ")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Corrupt records: %s\n", corrupt)
			fmt.Fprintf(cmd.OutOrStdout(), "Out-of-range counters: %d\n", report.OutOfRangeCounts)
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid progress days: %d\n", report.InvalidProgressDay)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed: %d\n", report.Fixed)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false, now)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
