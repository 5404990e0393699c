package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const minutesPerDay = 24 * 60

type NextPrayerInfo struct {
	Prayer    model.Prayer  `json:"prayer"`
	At        time.Time     `json:"at"`
	Remaining time.Duration `json:"remaining"`
	Countdown string        `json:"countdown"`
}

type SpiritualTimes struct {
	Midnight  time.Time `json:"midnight"`
	LastThird time.Time `json:"last_third"`
}

func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q (expected HH:MM)", s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q (expected HH:MM)", s)
	}
	return h, m, nil
}

// AdjustClock shifts a wall-clock time by minutes, wrapping around midnight.
// Only the time of day is kept: 23:58 +5 is 00:03.
func AdjustClock(s string, minutes int) (string, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	total := ((h*60+m+minutes)%minutesPerDay + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// AtClock places an HH:MM clock on base's calendar day in base's zone.
func AtClock(base time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := base.Date()
	return time.Date(y, mo, d, h, m, 0, 0, base.Location()), nil
}

func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// NextPrayer picks the soonest of the five daily prayers. A prayer whose time
// of day is already behind now is taken as tomorrow's. Sunrise never counts.
func NextPrayer(prayers []model.Prayer, now time.Time) (NextPrayerInfo, bool) {
	type candidate struct {
		prayer model.Prayer
		at     time.Time
	}
	cands := make([]candidate, 0, len(prayers))
	for _, p := range prayers {
		if p.Name == PrayerSunrise {
			continue
		}
		at, err := AtClock(now, p.Time)
		if err != nil {
			continue
		}
		if at.Before(now) {
			at = at.AddDate(0, 0, 1)
		}
		cands = append(cands, candidate{prayer: p, at: at})
	}
	if len(cands) == 0 {
		return NextPrayerInfo{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].at.Before(cands[j].at) })
	next := cands[0]
	remaining := next.at.Sub(now)
	return NextPrayerInfo{
		Prayer:    next.prayer,
		At:        next.at,
		Remaining: remaining,
		Countdown: FormatCountdown(remaining),
	}, true
}

// ComputeSpiritualTimes splits the night from sunset to the following dawn.
// Midnight is the halfway point, the last third starts two thirds in.
func ComputeSpiritualTimes(sunset, dawn string, base time.Time) (SpiritualTimes, error) {
	start, err := AtClock(base, sunset)
	if err != nil {
		return SpiritualTimes{}, fmt.Errorf("sunset: %w", err)
	}
	end, err := AtClock(base, dawn)
	if err != nil {
		return SpiritualTimes{}, fmt.Errorf("dawn: %w", err)
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	night := end.Sub(start)
	return SpiritualTimes{
		Midnight:  start.Add(night / 2),
		LastThird: start.Add(night * 2 / 3),
	}, nil
}
