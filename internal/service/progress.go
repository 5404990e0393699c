package service

import (
	"database/sql"
	"math"
	"sort"
	"time"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const (
	dayLayout  = "2006-01-02"
	weekLength = 7
)

type DayStatus string

const (
	DayActive  DayStatus = "active"
	DayMissed  DayStatus = "missed"
	DayCurrent DayStatus = "current"
	DayFuture  DayStatus = "future"
)

type ProgressSummary struct {
	Date           string `json:"date"`
	TodayPercent   int    `json:"today_percent"`
	WeeklyAverage  int    `json:"weekly_average"`
	Streak         int    `json:"streak"`
	StartedItems   int    `json:"started_items"`
	CompletedItems int    `json:"completed_items"`
	TotalItems     int    `json:"total_items"`
}

type CalendarDay struct {
	Date    string    `json:"date"`
	Day     int       `json:"day"`
	Percent int       `json:"percent"`
	Status  DayStatus `json:"status"`
}

type CalendarMonth struct {
	Year          int           `json:"year"`
	Month         time.Month    `json:"month"`
	LeadingBlanks int           `json:"leading_blanks"`
	Days          []CalendarDay `json:"days"`
}

func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ComputeDailyPercentage is round(100*sum(current)/sum(required)) over the
// whole list, or 0 for an empty requirement.
func ComputeDailyPercentage(items []model.PracticeItem) int {
	var current, required int
	for _, it := range items {
		current += it.CurrentCount
		required += it.Count
	}
	if required <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(current) / float64(required)))
}

// RecordDailyProgress returns a copy of progress with key set to pct.
func RecordDailyProgress(progress map[string]int, key string, pct int) map[string]int {
	next := make(map[string]int, len(progress)+1)
	for k, v := range progress {
		next[k] = v
	}
	next[key] = pct
	return next
}

func WeeklyAverage(progress map[string]int, today time.Time) int {
	sum := 0
	for i := 0; i < weekLength; i++ {
		sum += progress[DayKey(today.AddDate(0, 0, -i))]
	}
	return int(math.Round(float64(sum) / weekLength))
}

// ClassifyDay does not separate "no data" from "zero progress" for past days:
// both are missed.
func ClassifyDay(progress map[string]int, date, today time.Time) DayStatus {
	key := DayKey(date)
	todayKey := DayKey(today)
	switch {
	case key == todayKey:
		return DayCurrent
	case progress[key] > 0:
		return DayActive
	case key < todayKey:
		return DayMissed
	default:
		return DayFuture
	}
}

// Streak counts consecutive active days ending today. A day still at zero
// does not break the run until it is over, so the count then ends yesterday.
func Streak(progress map[string]int, today time.Time) int {
	day := today
	if progress[DayKey(day)] <= 0 {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for progress[DayKey(day)] > 0 {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func YearCalendar(progress map[string]int, year int, today time.Time) []CalendarMonth {
	loc := today.Location()
	months := make([]CalendarMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
		days := first.AddDate(0, 1, -1).Day()
		cm := CalendarMonth{
			Year:          year,
			Month:         m,
			LeadingBlanks: int(first.Weekday()),
			Days:          make([]CalendarDay, 0, days),
		}
		for d := 1; d <= days; d++ {
			date := time.Date(year, m, d, 0, 0, 0, 0, loc)
			key := DayKey(date)
			cm.Days = append(cm.Days, CalendarDay{
				Date:    key,
				Day:     d,
				Percent: progress[key],
				Status:  ClassifyDay(progress, date, today),
			})
		}
		months = append(months, cm)
	}
	return months
}

// RefreshDailyProgress recomputes today's entry from scratch and re-derives
// the streak; the stored streak is never trusted.
func RefreshDailyProgress(db *sql.DB, items []model.PracticeItem, now time.Time) (model.UserStats, error) {
	stats, err := LoadStats(db, now)
	if err != nil {
		return model.UserStats{}, err
	}
	stats.DailyProgress = RecordDailyProgress(stats.DailyProgress, DayKey(now), ComputeDailyPercentage(items))
	stats.Streak = Streak(stats.DailyProgress, now)
	stats.LastUpdate = now
	stats.CompletedToday = completedIDs(items)
	if err := SaveStats(db, stats); err != nil {
		return model.UserStats{}, err
	}
	return stats, nil
}

func completedIDs(items []model.PracticeItem) []string {
	out := make([]string, 0)
	for _, it := range items {
		if it.Completed() {
			out = append(out, it.ID)
		}
	}
	return out
}

func SummarizeProgress(db *sql.DB, now time.Time) (*ProgressSummary, error) {
	items, err := LoadPracticeItems(db)
	if err != nil {
		return nil, err
	}
	stats, err := LoadStats(db, now)
	if err != nil {
		return nil, err
	}
	// Today's value is always derived live so a stale record cannot leak in.
	progress := RecordDailyProgress(stats.DailyProgress, DayKey(now), ComputeDailyPercentage(items))
	summary := &ProgressSummary{
		Date:          DayKey(now),
		TodayPercent:  progress[DayKey(now)],
		WeeklyAverage: WeeklyAverage(progress, now),
		Streak:        Streak(progress, now),
		StartedItems:  startedCount(items),
		TotalItems:    len(items),
	}
	summary.CompletedItems = len(completedIDs(items))
	return summary, nil
}

type HistoryRow struct {
	Date    string
	Percent int
	Status  DayStatus
}

func History(progress map[string]int, today time.Time) []HistoryRow {
	keys := make([]string, 0, len(progress))
	for k := range progress {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]HistoryRow, 0, len(keys))
	for _, k := range keys {
		date, err := time.ParseInLocation(dayLayout, k, today.Location())
		if err != nil {
			continue
		}
		rows = append(rows, HistoryRow{Date: k, Percent: progress[k], Status: ClassifyDay(progress, date, today)})
	}
	return rows
}
