package hisn

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var zikrCmd = &cobra.Command{
	Use:     "zikr",
	Aliases: []string{"dhikr"},
	Short:   "Browse and count daily adhkar",
}

var (
	zikrCategory    string
	zikrAddCategory string
	zikrJSON        bool
	zikrTimes       int
	zikrResetAll    bool
	zikrText        string
	zikrCount       int
)

var zikrListCmd = &cobra.Command{
	Use:   "list",
	Short: "List adhkar with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := parseCategory(zikrCategory, true)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListPractice(sqldb, category)
			if err != nil {
				return err
			}
			if zikrJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No adhkar in this category")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tCATEGORY\tPROGRESS\tTEXT")
			for _, it := range items {
				mark := ""
				if it.Completed() {
					mark = " ✓"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d/%d%s\t%s\n", it.ID, it.Category, it.CurrentCount, it.Count, mark, shorten(it.Text, 60))
			}
			return nil
		})
	},
}

var zikrCountCmd = &cobra.Command{
	Use:   "count <id>",
	Short: "Count one repetition of a dhikr",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if zikrTimes <= 0 {
			return fmt.Errorf("--times must be > 0")
		}
		return withDB(func(sqldb *sql.DB) error {
			var res service.IncrementResult
			for i := 0; i < zikrTimes; i++ {
				var err error
				res, err = service.IncrementPractice(sqldb, args[0], time.Now())
				if err != nil {
					return err
				}
				if !res.Changed || res.Completed {
					break
				}
			}
			it := res.Item
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d/%d\n", it.ID, progressBar(it.CurrentCount, it.Count, 20), it.CurrentCount, it.Count)
			switch {
			case res.Completed && res.Celebrate:
				fmt.Fprintln(cmd.OutOrStdout(), "ما شاء الله! Completed, keep going 🌟")
			case res.Completed && res.Changed:
				fmt.Fprintln(cmd.OutOrStdout(), "Completed ✓")
			case res.Completed:
				fmt.Fprintln(cmd.OutOrStdout(), "Already completed")
			}
			return nil
		})
	},
}

var zikrResetCmd = &cobra.Command{
	Use:   "reset [id]",
	Short: "Reset a dhikr counter, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if zikrResetAll == (len(args) == 1) {
			return fmt.Errorf("pass either an id or --all")
		}
		return withDB(func(sqldb *sql.DB) error {
			if zikrResetAll {
				if err := service.ResetAllPractice(sqldb, time.Now()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reset all counters")
				return nil
			}
			if err := service.ResetPractice(sqldb, args[0], time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

var zikrAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a personal dhikr",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := parseCategory(zikrAddCategory, false)
		if err != nil {
			return err
		}
		in := service.AddCustomInput{Text: zikrText, Count: zikrCount, Category: category}
		return withDB(func(sqldb *sql.DB) error {
			item, added, err := service.AddCustomPractice(sqldb, in, time.Now())
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing added: text is empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d times, %s)\n", item.ID, item.Count, item.Category)
			return nil
		})
	},
}

func parseCategory(raw string, allowEmpty bool) (model.Category, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" && allowEmpty {
		return "", nil
	}
	c := model.Category(raw)
	if !c.Valid() {
		names := make([]string, 0, len(model.Categories))
		for _, k := range model.Categories {
			names = append(names, string(k))
		}
		return "", fmt.Errorf("unknown category %q (use one of: %s)", raw, strings.Join(names, ", "))
	}
	return c, nil
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(zikrCmd)
	zikrCmd.AddCommand(zikrListCmd, zikrCountCmd, zikrResetCmd, zikrAddCmd)

	zikrListCmd.Flags().StringVar(&zikrCategory, "category", "", "Filter by category")
	zikrListCmd.Flags().BoolVar(&zikrJSON, "json", false, "Output as JSON")

	zikrCountCmd.Flags().IntVar(&zikrTimes, "times", 1, "Repetitions to count")

	zikrResetCmd.Flags().BoolVar(&zikrResetAll, "all", false, "Reset every counter")

	zikrAddCmd.Flags().StringVar(&zikrText, "text", "", "Dhikr text")
	zikrAddCmd.Flags().IntVar(&zikrCount, "count", service.DefaultCustomCount, "Required repetitions (1-100)")
	zikrAddCmd.Flags().StringVar(&zikrAddCategory, "category", string(model.CategorySupplications), "Category")
	_ = zikrAddCmd.MarkFlagRequired("text")
}
