package hisn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/config"
	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var prayerCmd = &cobra.Command{
	Use:   "prayer",
	Short: "Prayer times, countdown and calculation settings",
}

var (
	prayerDate      string
	prayerJSON      bool
	prayerSetMethod int
)

var prayerTimesCmd = &cobra.Command{
	Use:   "times",
	Short: "Show prayer times for the saved location",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrNow(prayerDate)
		if err != nil {
			return err
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			set, err := fetchPrayerSet(cmd.Context(), sqldb, cfg, date)
			if err != nil {
				return err
			}
			spiritual, serr := service.Spiritual(set, date)
			if prayerJSON {
				payload := map[string]any{"times": set}
				if serr == nil {
					payload["spiritual"] = spiritual
				}
				return printJSON(cmd.OutOrStdout(), payload)
			}
			renderPrayerSet(cmd.OutOrStdout(), set)
			if serr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "منتصف الليل (Midnight)\t%s\n", spiritual.Midnight.Format("15:04"))
				fmt.Fprintf(cmd.OutOrStdout(), "الثلث الأخير (Last third)\t%s\n", spiritual.LastThird.Format("15:04"))
			}
			return nil
		})
	},
}

var prayerNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next prayer and the time left",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			now := time.Now()
			set, err := fetchPrayerSet(cmd.Context(), sqldb, cfg, now)
			if err != nil {
				return err
			}
			next, ok := service.NextPrayer(set.Prayers, service.CityClock(set, now))
			if !ok {
				return fmt.Errorf("no prayer times available")
			}
			if prayerJSON {
				return printJSON(cmd.OutOrStdout(), next)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next: %s %s (%s) at %s, in %s\n",
				next.Prayer.Icon, next.Prayer.ArabicName, next.Prayer.Name, next.At.Format("15:04"), next.Countdown)
			return nil
		})
	},
}

var prayerWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live countdown to the next prayer (Ctrl+C to stop)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			settings, err := service.LoadSettings(sqldb)
			if err != nil {
				return err
			}
			engine := newPrayerEngine(sqldb, cfg)
			load := func(day time.Time) error {
				q, err := service.QueryFromSettings(settings, day)
				if err != nil {
					return err
				}
				_, err = engine.Fetch(ctx, q)
				return err
			}
			if err := load(time.Now()); err != nil {
				return err
			}
			return watchCountdown(ctx, cmd.OutOrStdout(), engine, time.Second, load)
		})
	},
}

// watchCountdown redraws from the engine's current set on every tick. It only
// reloads when the calendar day rolls over.
func watchCountdown(ctx context.Context, w io.Writer, engine *service.PrayerEngine, every time.Duration, reload func(time.Time) error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	loaded := time.Now()
	for {
		now := time.Now()
		if service.DayKey(now) != service.DayKey(loaded) {
			if err := reload(now); err != nil {
				log.Warn().Err(err).Msg("reload prayer times for new day")
			}
			loaded = now
		}
		if set := engine.Current(); set != nil {
			if next, ok := service.NextPrayer(set.Prayers, service.CityClock(set, now)); ok {
				fmt.Fprintf(w, "\r%s %s  %s ", next.Prayer.Icon, next.Prayer.ArabicName, next.Countdown)
			}
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case <-ticker.C:
		}
	}
}

var prayerMethodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List calculation methods, or pick one with --set",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if cmd.Flags().Changed("set") {
				m, err := service.SetCalculationMethod(sqldb, prayerSetMethod)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Calculation method set to %d (%s)\n", m.ID, m.Name)
				return nil
			}
			settings, err := service.LoadSettings(sqldb)
			if err != nil {
				return err
			}
			if prayerJSON {
				return printJSON(cmd.OutOrStdout(), service.CalculationMethods)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tالاسم")
			for _, m := range service.CalculationMethods {
				mark := " "
				if m.ID == settings.Prayer.Method {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%d\t%s\t%s\n", mark, m.ID, m.Name, m.NameAr)
			}
			return nil
		})
	},
}

var prayerAdjustCmd = &cobra.Command{
	Use:   "adjust <prayer> <minutes>",
	Short: "Shift a prayer time by signed minutes (0 clears)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q", args[1])
		}
		return withDB(func(sqldb *sql.DB) error {
			name, err := service.SetPrayerAdjustment(sqldb, args[0], minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s adjustment: %+d min\n", name, minutes)
			return nil
		})
	},
}

func fetchPrayerSet(ctx context.Context, sqldb *sql.DB, cfg config.Config, date time.Time) (*model.PrayerTimeSet, error) {
	settings, err := service.LoadSettings(sqldb)
	if err != nil {
		return nil, err
	}
	q, err := service.QueryFromSettings(settings, date)
	if err != nil {
		return nil, err
	}
	set, err := newPrayerEngine(sqldb, cfg).Fetch(ctx, q)
	if errors.Is(err, service.ErrPrayerTimesUnavailable) {
		return nil, fmt.Errorf("%w (check your connection and try again)", err)
	}
	return set, err
}

func renderPrayerSet(w io.Writer, set *model.PrayerTimeSet) {
	h := set.Hijri
	fmt.Fprintf(w, "%s | %s %s %s %s\n", set.City, h.DayName, h.Day, h.MonthAr, h.Year)
	if set.Offline {
		fmt.Fprintln(w, "(cached times, offline)")
	}
	for _, p := range set.Prayers {
		fmt.Fprintf(w, "%s %s (%s)\t%s\n", p.Icon, p.ArabicName, p.Name, p.Time)
	}
}

func init() {
	rootCmd.AddCommand(prayerCmd)
	prayerCmd.AddCommand(prayerTimesCmd, prayerNextCmd, prayerWatchCmd, prayerMethodsCmd, prayerAdjustCmd)

	prayerCmd.PersistentFlags().BoolVar(&prayerJSON, "json", false, "Output as JSON")
	prayerTimesCmd.Flags().StringVar(&prayerDate, "date", "", "Date YYYY-MM-DD (default today)")
	prayerMethodsCmd.Flags().IntVar(&prayerSetMethod, "set", 0, "Select calculation method by id")
}
