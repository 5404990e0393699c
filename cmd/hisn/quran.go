package hisn

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/config"
)

var quranJSON bool

var quranCmd = &cobra.Command{
	Use:   "quran",
	Short: "Read the Quran, tafsir and bookmarks",
}

var quranListCmd = &cobra.Command{
	Use:   "list",
	Short: "List surahs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			svc := newQuranService(sqldb, cfg)
			surahs, offline, err := svc.ListSurahs(cmd.Context())
			if err != nil {
				return err
			}
			if quranJSON {
				return printJSON(cmd.OutOrStdout(), surahs)
			}
			if offline {
				fmt.Fprintln(cmd.OutOrStdout(), "(cached index, offline)")
			}
			if lr, err := svc.LastRead(); err == nil && lr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Last read: %d %s (%s)\n", lr.Surah, lr.Name, lr.ReadAt.Format("2006-01-02 15:04"))
			}
			for _, s := range surahs {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d\t%s\t%s\t%d ayahs\t%s\n", s.Number, s.Name, s.EnglishName, s.NumberOfAyahs, s.RevelationType)
			}
			return nil
		})
	},
}

var quranReadCmd = &cobra.Command{
	Use:   "read <surah>",
	Short: "Read a surah by number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIntArg("surah", args[0])
		if err != nil {
			return err
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			detail, offline, err := newQuranService(sqldb, cfg).ReadSurah(cmd.Context(), n, time.Now())
			if err != nil {
				return err
			}
			if quranJSON {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", detail.Name, detail.EnglishName)
			if offline {
				fmt.Fprintln(cmd.OutOrStdout(), "(cached text, offline)")
			}
			for _, a := range detail.Ayahs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s ﴿%d﴾ [%d]\n", a.Text, a.NumberInSurah, a.Number)
			}
			return nil
		})
	},
}

var quranTafsirCmd = &cobra.Command{
	Use:   "tafsir <ayah>",
	Short: "Show tafsir al-Jalalayn for a global ayah number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIntArg("ayah", args[0])
		if err != nil {
			return err
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			t, err := newQuranService(sqldb, cfg).Tafsir(cmd.Context(), n)
			if err != nil {
				return err
			}
			if quranJSON {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ﴿%d﴾\n%s\n", t.SurahName, t.NumberInSurah, t.Text)
			return nil
		})
	},
}

var quranSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search the Arabic text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			matches, err := newQuranService(sqldb, cfg).Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if quranJSON {
				return printJSON(cmd.OutOrStdout(), matches)
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s %d:%d\t%s\n", m.AyahNumber, m.SurahName, m.SurahNumber, m.NumberInSurah, shorten(m.Text, 80))
			}
			return nil
		})
	},
}

var quranBookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage ayah bookmarks",
}

var quranBookmarkAddCmd = &cobra.Command{
	Use:   "add <ayah>",
	Short: "Bookmark a global ayah number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIntArg("ayah", args[0])
		if err != nil {
			return err
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			added, err := newQuranService(sqldb, cfg).AddBookmark(n)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Ayah %d already bookmarked\n", n)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked ayah %d\n", n)
			return nil
		})
	},
}

var quranBookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <ayah>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIntArg("ayah", args[0])
		if err != nil {
			return err
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			removed, err := newQuranService(sqldb, cfg).RemoveBookmark(n)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("ayah %d is not bookmarked", n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %d\n", n)
			return nil
		})
	},
}

var quranBookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			marks, err := newQuranService(sqldb, cfg).Bookmarks()
			if err != nil {
				return err
			}
			if quranJSON {
				return printJSON(cmd.OutOrStdout(), marks)
			}
			if len(marks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks")
				return nil
			}
			for _, m := range marks {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(quranCmd)
	quranCmd.AddCommand(quranListCmd, quranReadCmd, quranTafsirCmd, quranSearchCmd, quranBookmarkCmd)
	quranBookmarkCmd.AddCommand(quranBookmarkAddCmd, quranBookmarkRemoveCmd, quranBookmarkListCmd)

	quranCmd.PersistentFlags().BoolVar(&quranJSON, "json", false, "Output as JSON")
}
