package hisn

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var (
	progressJSON  bool
	progressDate  string
	calendarYear  int
	calendarMonth int
	exportOut     string
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show today's progress, weekly average and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrNow(progressDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			summary, err := service.SummarizeProgress(sqldb, date)
			if err != nil {
				return err
			}
			if progressJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", summary.Date)
			fmt.Fprintf(out, "Today: %s %d%%\n", progressBar(summary.TodayPercent, 100, 20), summary.TodayPercent)
			fmt.Fprintf(out, "Weekly average: %d%%\n", summary.WeeklyAverage)
			fmt.Fprintf(out, "Streak: %d day(s) 🔥\n", summary.Streak)
			fmt.Fprintf(out, "Completed: %d/%d (started %d)\n", summary.CompletedItems, summary.TotalItems, summary.StartedItems)
			return nil
		})
	},
}

var progressCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the yearly activity calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		year := calendarYear
		if year == 0 {
			year = now.Year()
		}
		if calendarMonth < 0 || calendarMonth > 12 {
			return fmt.Errorf("--month must be between 1 and 12")
		}
		return withDB(func(sqldb *sql.DB) error {
			stats, err := service.LoadStats(sqldb, now)
			if err != nil {
				return err
			}
			months := service.YearCalendar(stats.DailyProgress, year, now)
			if progressJSON {
				if calendarMonth > 0 {
					return printJSON(cmd.OutOrStdout(), months[calendarMonth-1])
				}
				return printJSON(cmd.OutOrStdout(), months)
			}
			for _, m := range months {
				if calendarMonth > 0 && int(m.Month) != calendarMonth {
					continue
				}
				renderMonth(cmd.OutOrStdout(), m)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "■ active  · missed  ◆ today  □ upcoming")
			return nil
		})
	},
}

var progressExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily progress history to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.ExportHistory(sqldb, exportOut, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d day(s) to %s\n", n, exportOut)
			return nil
		})
	},
}

var dayGlyph = map[service.DayStatus]string{
	service.DayActive:  "■",
	service.DayMissed:  "·",
	service.DayCurrent: "◆",
	service.DayFuture:  "□",
}

func renderMonth(w io.Writer, m service.CalendarMonth) {
	fmt.Fprintf(w, "%s %d\n", m.Month, m.Year)
	fmt.Fprintln(w, "Su Mo Tu We Th Fr Sa")
	var line strings.Builder
	col := 0
	for i := 0; i < m.LeadingBlanks; i++ {
		line.WriteString("   ")
		col++
	}
	for _, d := range m.Days {
		fmt.Fprintf(&line, "%2s ", dayGlyph[d.Status])
		col++
		if col == 7 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
			col = 0
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressCalendarCmd, progressExportCmd)

	progressCmd.PersistentFlags().BoolVar(&progressJSON, "json", false, "Output as JSON")
	progressCmd.Flags().StringVar(&progressDate, "date", "", "Summarize as of date YYYY-MM-DD (default today)")
	progressCalendarCmd.Flags().IntVar(&calendarYear, "year", 0, "Calendar year (default current)")
	progressCalendarCmd.Flags().IntVar(&calendarMonth, "month", 0, "Only show one month (1-12)")
	progressExportCmd.Flags().StringVar(&exportOut, "out", "hisn-history.xlsx", "Output xlsx path")
}
