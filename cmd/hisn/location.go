package hisn

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/config"
	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Set the location used for prayer times",
}

var (
	locationJSON  bool
	locationIndex int
)

var locationHereCmd = &cobra.Command{
	Use:   "here",
	Short: "Detect the current location and load its prayer times",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			res, err := newLocationResolver(sqldb, cfg).ResolveCurrentLocation(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			return reportLocation(cmd.OutOrStdout(), res)
		})
	},
}

var locationSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search places by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			places, err := newLocationResolver(sqldb, cfg).SearchPlace(cmd.Context(), query)
			if err != nil {
				return err
			}
			if locationJSON {
				return printJSON(cmd.OutOrStdout(), places)
			}
			renderPlaces(cmd.OutOrStdout(), places)
			return nil
		})
	},
}

var locationSelectCmd = &cobra.Command{
	Use:   "select <query>",
	Short: "Search places and save the chosen one (--index, default 1)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		if locationIndex <= 0 {
			return fmt.Errorf("--index must be > 0")
		}
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			r := newLocationResolver(sqldb, cfg)
			places, err := r.SearchPlace(cmd.Context(), query)
			if err != nil {
				return err
			}
			if locationIndex > len(places) {
				return fmt.Errorf("no result #%d for %q (%d found)", locationIndex, query, len(places))
			}
			res, err := r.SelectPlace(cmd.Context(), places[locationIndex-1], time.Now())
			if err != nil {
				return err
			}
			return reportLocation(cmd.OutOrStdout(), res)
		})
	},
}

var locationFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Interactive place search; type to search, enter a number to select",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(sqldb *sql.DB, cfg config.Config) error {
			res, ok, err := interactiveFind(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), newLocationResolver(sqldb, cfg), cfg.SearchDebounce)
			if err != nil || !ok {
				return err
			}
			return reportLocation(cmd.OutOrStdout(), res)
		})
	},
}

func interactiveFind(ctx context.Context, in io.Reader, out io.Writer, r *service.LocationResolver, delay time.Duration) (service.LocationResult, bool, error) {
	var (
		mu     sync.Mutex
		latest []model.Place
	)
	debounce := service.NewDebouncer(delay)
	defer debounce.Stop()

	fmt.Fprintln(out, "Type a city name; enter a result number to select it; empty line to quit.")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return service.LocationResult{}, false, nil
		}
		if n, err := strconv.Atoi(line); err == nil {
			mu.Lock()
			places := latest
			if n < 1 || n > len(places) {
				fmt.Fprintf(out, "No result #%d\n", n)
				mu.Unlock()
				continue
			}
			mu.Unlock()
			debounce.Stop()
			res, err := r.SelectPlace(ctx, places[n-1], time.Now())
			return res, err == nil, err
		}
		query := line
		debounce.Trigger(ctx, func(ctx context.Context) {
			places, err := r.SearchPlace(ctx, query)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Warn().Err(err).Str("query", query).Msg("place search failed")
				return
			}
			mu.Lock()
			latest = places
			renderPlaces(out, places)
			mu.Unlock()
		})
	}
	return service.LocationResult{}, false, scanner.Err()
}

func renderPlaces(w io.Writer, places []model.Place) {
	if len(places) == 0 {
		fmt.Fprintln(w, "No places found")
		return
	}
	for i, p := range places {
		fmt.Fprintf(w, "%d. %s (%.4f, %.4f)\n", i+1, p.DisplayName, p.Lat, p.Lon)
	}
}

func reportLocation(w io.Writer, res service.LocationResult) error {
	if locationJSON {
		return printJSON(w, res)
	}
	fmt.Fprintf(w, "Location: %s (%.4f, %.4f)\n", res.City, res.Coords.Lat, res.Coords.Lon)
	if !res.Persisted {
		fmt.Fprintln(w, "Showing cached times; location not saved")
	}
	if res.Times != nil {
		renderPrayerSet(w, res.Times)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(locationCmd)
	locationCmd.AddCommand(locationHereCmd, locationSearchCmd, locationSelectCmd, locationFindCmd)

	locationCmd.PersistentFlags().BoolVar(&locationJSON, "json", false, "Output as JSON")
	locationSelectCmd.Flags().IntVar(&locationIndex, "index", 1, "Result number to select")
}
