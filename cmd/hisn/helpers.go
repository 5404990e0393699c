package hisn

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abdel2584/hisn-moslim-3/internal/app"
	"github.com/abdel2584/hisn-moslim-3/internal/config"
	"github.com/abdel2584/hisn-moslim-3/internal/db"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/aladhan"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/alquran"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/ipgeo"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/nominatim"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withRuntime is withDB plus the resolved runtime config, for commands that
// talk to remote services.
func withRuntime(run func(*sql.DB, config.Config) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(resolveConfigPath(path))
	if err != nil {
		return err
	}
	return withDB(func(sqldb *sql.DB) error {
		return run(sqldb, cfg)
	})
}

func httpClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

func newPrayerEngine(sqldb *sql.DB, cfg config.Config) *service.PrayerEngine {
	client := &aladhan.Client{
		BaseURL:    cfg.Endpoints.Aladhan,
		HTTPClient: httpClient(cfg),
		UserAgent:  cfg.UserAgent,
	}
	return service.NewPrayerEngine(sqldb, client, cfg.Labels.Offline)
}

func newLocationResolver(sqldb *sql.DB, cfg config.Config) *service.LocationResolver {
	return &service.LocationResolver{
		DB:            sqldb,
		Locator:       &ipgeo.Client{BaseURL: cfg.Endpoints.IPGeo, HTTPClient: &http.Client{Timeout: cfg.LocateTimeout}},
		Geocoder:      &nominatim.Client{BaseURL: cfg.Endpoints.Nominatim, HTTPClient: httpClient(cfg), UserAgent: cfg.UserAgent},
		Engine:        newPrayerEngine(sqldb, cfg),
		LocateTimeout: cfg.LocateTimeout,
		SearchLimit:   cfg.SearchLimit,
		FallbackLabel: cfg.Labels.CurrentLocation,
	}
}

func newQuranService(sqldb *sql.DB, cfg config.Config) *service.QuranService {
	return &service.QuranService{
		DB:     sqldb,
		Client: &alquran.Client{BaseURL: cfg.Endpoints.AlQuran, HTTPClient: httpClient(cfg), UserAgent: cfg.UserAgent},
	}
}

func parseIntArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateOrNow resolves --date, keeping the current wall clock so that
// "next prayer" style answers stay meaningful.
func parseDateOrNow(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	now := time.Now()
	if date == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local), nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func progressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := current * width / total
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
