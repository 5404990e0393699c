package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

type DoctorReport struct {
	CorruptRecords     []string `json:"corrupt_records"`
	OutOfRangeCounts   int      `json:"out_of_range_counts"`
	InvalidProgressDay int      `json:"invalid_progress_days"`
	Fixed              int      `json:"fixed,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return len(r.CorruptRecords) == 0 && r.OutOfRangeCounts == 0 && r.InvalidProgressDay == 0
}

// RunDoctor inspects the stored records. With fix, unreadable records are
// dropped so defaults apply, counters are clamped and bad progress days removed.
func RunDoctor(db *sql.DB, fix bool, now time.Time) (DoctorReport, error) {
	report := DoctorReport{CorruptRecords: []string{}}

	decoders := map[string]func(string) error{
		RecordPracticeItems:  func(raw string) error { var v []model.PracticeItem; return json.Unmarshal([]byte(raw), &v) },
		RecordStats:          func(raw string) error { var v model.UserStats; return json.Unmarshal([]byte(raw), &v) },
		RecordSettings:       func(raw string) error { var v model.AppSettings; return json.Unmarshal([]byte(raw), &v) },
		RecordQuranBookmarks: func(raw string) error { var v []int; return json.Unmarshal([]byte(raw), &v) },
		RecordQuranLastRead:  func(raw string) error { var v LastRead; return json.Unmarshal([]byte(raw), &v) },
	}
	for _, key := range []string{RecordPracticeItems, RecordStats, RecordSettings, RecordQuranBookmarks, RecordQuranLastRead} {
		raw, ok, err := getRecord(db, key)
		if err != nil {
			return report, fmt.Errorf("doctor read %s: %w", key, err)
		}
		if ok && decoders[key](raw) != nil {
			report.CorruptRecords = append(report.CorruptRecords, key)
		}
	}

	if raw, ok, err := getRecord(db, RecordPracticeItems); err != nil {
		return report, fmt.Errorf("doctor read %s: %w", RecordPracticeItems, err)
	} else if ok {
		var persisted []model.PracticeItem
		if json.Unmarshal([]byte(raw), &persisted) == nil {
			for _, it := range persisted {
				if it.CurrentCount < 0 || it.CurrentCount > it.Count {
					report.OutOfRangeCounts++
				}
			}
		}
	}

	stats, err := LoadStats(db, now)
	if err != nil {
		return report, err
	}
	for k, v := range stats.DailyProgress {
		if _, err := time.Parse(dayLayout, k); err != nil || v < 0 || v > 100 {
			report.InvalidProgressDay++
		}
	}

	if !fix || report.Healthy() {
		return report, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	for _, key := range report.CorruptRecords {
		if _, err := tx.Exec(`DELETE FROM records WHERE key = ?`, key); err != nil {
			_ = tx.Rollback()
			return report, fmt.Errorf("doctor drop record %s: %w", key, err)
		}
		report.Fixed++
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}

	if report.OutOfRangeCounts > 0 {
		// Loading merges through the catalog, which clamps every counter.
		items, err := LoadPracticeItems(db)
		if err != nil {
			return report, err
		}
		if err := SavePracticeItems(db, items); err != nil {
			return report, err
		}
		report.Fixed += report.OutOfRangeCounts
	}

	if report.InvalidProgressDay > 0 {
		stats, err := LoadStats(db, now)
		if err != nil {
			return report, err
		}
		clean := make(map[string]int, len(stats.DailyProgress))
		for k, v := range stats.DailyProgress {
			if _, err := time.Parse(dayLayout, k); err != nil || v < 0 || v > 100 {
				continue
			}
			clean[k] = v
		}
		stats.DailyProgress = clean
		stats.Streak = Streak(clean, now)
		if err := SaveStats(db, stats); err != nil {
			return report, err
		}
		report.Fixed += report.InvalidProgressDay
	}
	return report, nil
}
