package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/abdel2584/hisn-moslim-3/internal/catalog"
	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const (
	RecordPracticeItems  = "azkar_progress_v5"
	RecordStats          = "user_stats_v5"
	RecordSettings       = "app_settings_v5"
	RecordQuranBookmarks = "quran_bookmarks"
	RecordQuranLastRead  = "quran_last_read"
)

const (
	DefaultMethod   = 4
	DefaultCity     = "مكة المكرمة"
	DefaultFontSize = 22
)

func getRecord(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, fmt.Errorf("record key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

func putRecord(db *sql.DB, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	_, err = db.Exec(`
INSERT INTO records(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, string(data))
	if err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

// LoadPracticeItems returns the catalog merged with stored progress. A missing
// or unreadable record yields the bare catalog.
func LoadPracticeItems(db *sql.DB) ([]model.PracticeItem, error) {
	defaults, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	raw, ok, err := getRecord(db, RecordPracticeItems)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaults, nil
	}
	var persisted []model.PracticeItem
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		log.Warn().Err(err).Str("record", RecordPracticeItems).Msg("corrupt record, falling back to catalog")
		return defaults, nil
	}
	return MergeCatalog(persisted, defaults), nil
}

func SavePracticeItems(db *sql.DB, items []model.PracticeItem) error {
	if items == nil {
		items = []model.PracticeItem{}
	}
	return putRecord(db, RecordPracticeItems, items)
}

func defaultStats(now time.Time) model.UserStats {
	return model.UserStats{
		Streak:         0,
		LastUpdate:     now,
		CompletedToday: []string{},
		DailyProgress:  map[string]int{},
	}
}

func LoadStats(db *sql.DB, now time.Time) (model.UserStats, error) {
	raw, ok, err := getRecord(db, RecordStats)
	if err != nil {
		return model.UserStats{}, err
	}
	if !ok {
		return defaultStats(now), nil
	}
	var stats model.UserStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		log.Warn().Err(err).Str("record", RecordStats).Msg("corrupt record, starting fresh statistics")
		return defaultStats(now), nil
	}
	if stats.DailyProgress == nil {
		stats.DailyProgress = map[string]int{}
	}
	if stats.CompletedToday == nil {
		stats.CompletedToday = []string{}
	}
	// The stored streak only mirrors the last write; the history is authoritative.
	stats.Streak = Streak(stats.DailyProgress, now)
	return stats, nil
}

func SaveStats(db *sql.DB, stats model.UserStats) error {
	return putRecord(db, RecordStats, stats)
}

func DefaultPrayerSettings() *model.PrayerSettings {
	return &model.PrayerSettings{
		Method:       DefaultMethod,
		Adjustments:  map[string]int{},
		SavedCity:    DefaultCity,
		AutoLocation: true,
	}
}

func DefaultSettings() model.AppSettings {
	return model.AppSettings{
		FontSize:  DefaultFontSize,
		Vibration: true,
		Notifications: model.NotificationSettings{
			Morning:     true,
			Evening:     true,
			Sleep:       true,
			Ramadan:     true,
			LastTenDays: true,
		},
		Prayer: DefaultPrayerSettings(),
	}
}

// LoadSettings never fails on bad stored data: older records without a prayer
// block get the default one, unreadable records get full defaults.
func LoadSettings(db *sql.DB) (model.AppSettings, error) {
	raw, ok, err := getRecord(db, RecordSettings)
	if err != nil {
		return model.AppSettings{}, err
	}
	if !ok {
		return DefaultSettings(), nil
	}
	var s model.AppSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Str("record", RecordSettings).Msg("corrupt record, using default settings")
		return DefaultSettings(), nil
	}
	if s.Prayer == nil {
		s.Prayer = DefaultPrayerSettings()
	}
	if s.Prayer.Adjustments == nil {
		s.Prayer.Adjustments = map[string]int{}
	}
	return s, nil
}

func SaveSettings(db *sql.DB, s model.AppSettings) error {
	return putRecord(db, RecordSettings, s)
}

// ClearAll wipes every record and cache row. It is the only way user-added
// practice items are removed.
func ClearAll(db *sql.DB) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin clear tx: %w", err)
	}
	var total int64
	for _, table := range []string{"records", "prayer_cache", "quran_cache"} {
		res, err := tx.Exec(`DELETE FROM ` + table)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("clear %s rows affected: %w", table, err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear tx: %w", err)
	}
	return total, nil
}
