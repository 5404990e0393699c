package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/aladhan"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

const offlineLabel = "وضع عدم الاتصال"

func sampleDay() aladhan.DayTimings {
	return aladhan.DayTimings{
		Timings: aladhan.Timings{
			"Fajr": "04:30", "Sunrise": "05:50", "Dhuhr": "12:10",
			"Asr": "15:30", "Maghrib": "18:20", "Isha": "19:50",
		},
		Hijri:     aladhan.Hijri{Day: "12", MonthAr: "رمضان", MonthEn: "Ramaḍān", Year: "1447"},
		WeekdayAr: "الثلاثاء",
		Timezone:  "Asia/Riyadh",
	}
}

type fakeTimings struct {
	mu    sync.Mutex
	day   aladhan.DayTimings
	err   error
	calls int
	gate  chan struct{}
}

func (f *fakeTimings) Timings(ctx context.Context, lat, lon float64, date time.Time, method int) (aladhan.DayTimings, []byte, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	day, err := f.day, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return day, nil, err
}

func TestAdjustClockWrapsAroundMidnight(t *testing.T) {
	t.Parallel()
	got, err := service.AdjustClock("23:58", 5)
	require.NoError(t, err)
	assert.Equal(t, "00:03", got)

	got, err = service.AdjustClock("00:02", -5)
	require.NoError(t, err)
	assert.Equal(t, "23:57", got)

	got, err = service.AdjustClock("12:00", 0)
	require.NoError(t, err)
	assert.Equal(t, "12:00", got)

	_, err = service.AdjustClock("25:00", 1)
	assert.Error(t, err)
}

func TestBuildPrayerListNeverAdjustsSunrise(t *testing.T) {
	t.Parallel()
	prayers, err := service.BuildPrayerList(sampleDay().Timings, map[string]int{
		service.PrayerFajr:    -10,
		service.PrayerSunrise: 30,
		service.PrayerIsha:    15,
	})
	require.NoError(t, err)
	require.Len(t, prayers, 6)
	assert.Equal(t, "04:20", prayers[0].Time)
	assert.Equal(t, "05:50", prayers[1].Time)
	assert.Equal(t, "20:05", prayers[5].Time)
	assert.Equal(t, "الفجر", prayers[0].ArabicName)
}

func TestNextPrayerSkipsSunriseAndRollsOver(t *testing.T) {
	t.Parallel()
	prayers, err := service.BuildPrayerList(sampleDay().Timings, nil)
	require.NoError(t, err)

	now := day(t, "2026-03-10 13:00")
	next, ok := service.NextPrayer(prayers, now)
	require.True(t, ok)
	assert.Equal(t, service.PrayerAsr, next.Prayer.Name)
	assert.Equal(t, "02:30:00", next.Countdown)

	now = day(t, "2026-03-10 05:00")
	next, ok = service.NextPrayer(prayers, now)
	require.True(t, ok)
	assert.Equal(t, service.PrayerDhuhr, next.Prayer.Name, "sunrise is never the next prayer")

	now = day(t, "2026-03-10 21:00")
	next, ok = service.NextPrayer(prayers, now)
	require.True(t, ok)
	assert.Equal(t, service.PrayerFajr, next.Prayer.Name)
	assert.Equal(t, 11, next.At.Day())
	assert.Equal(t, "07:30:00", next.Countdown)
}

func TestComputeSpiritualTimes(t *testing.T) {
	t.Parallel()
	base := day(t, "2026-03-10 00:00")
	st, err := service.ComputeSpiritualTimes("18:00", "06:00", base)
	require.NoError(t, err)
	assert.Equal(t, "00:00", st.Midnight.Format("15:04"))
	assert.Equal(t, 11, st.Midnight.Day())
	assert.Equal(t, "02:00", st.LastThird.Format("15:04"))
}

func TestFetchCachesThenFallsBackOffline(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	client := &fakeTimings{day: sampleDay()}
	engine := service.NewPrayerEngine(db, client, offlineLabel)
	q := service.PrayerQuery{Coords: model.Coordinates{Lat: 21.42, Lon: 39.82}, Date: day(t, "2026-03-10 10:00"), Method: 4, City: "مكة المكرمة"}

	set, err := engine.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, set.Offline)
	assert.Equal(t, "الثلاثاء", set.Hijri.DayName)
	assert.Equal(t, "10-03-2026", set.DateKey)

	client.mu.Lock()
	client.err = errors.New("network down")
	client.mu.Unlock()

	set, err = engine.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, set.Offline)
	assert.Equal(t, offlineLabel, set.Hijri.DayName)
	assert.Len(t, set.Prayers, 6)
	assert.Equal(t, "رمضان", set.Hijri.MonthAr)
	assert.Equal(t, "Asia/Riyadh", set.Timezone, "cached sets keep their zone")
}

func TestNextPrayerCountsInCityTimezone(t *testing.T) {
	t.Parallel()
	prayers, err := service.BuildPrayerList(aladhan.Timings{
		"Fajr": "04:30", "Sunrise": "05:50", "Dhuhr": "11:50",
		"Asr": "15:10", "Maghrib": "17:55", "Isha": "19:20",
	}, nil)
	require.NoError(t, err)
	set := &model.PrayerTimeSet{Prayers: prayers, Timezone: "Asia/Riyadh"}

	// 09:00 UTC is 12:00 in Riyadh, past Dhuhr there.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	next, ok := service.NextPrayer(set.Prayers, service.CityClock(set, now))
	require.True(t, ok)
	assert.Equal(t, service.PrayerAsr, next.Prayer.Name)
	assert.Equal(t, "03:10:00", next.Countdown)

	hostNext, ok := service.NextPrayer(set.Prayers, now)
	require.True(t, ok)
	assert.Equal(t, service.PrayerDhuhr, hostNext.Prayer.Name)

	set.Timezone = "Not/AZone"
	assert.True(t, service.CityClock(set, now).Equal(now))
	assert.Equal(t, time.UTC, service.CityClock(set, now).Location())
	assert.Equal(t, now, service.CityClock(nil, now))
}

func TestFetchWithoutCacheIsRetryableError(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	engine := service.NewPrayerEngine(db, &fakeTimings{err: errors.New("timeout")}, offlineLabel)

	set, err := engine.Fetch(context.Background(), service.PrayerQuery{Date: day(t, "2026-03-10 10:00")})
	assert.ErrorIs(t, err, service.ErrPrayerTimesUnavailable)
	require.NotNil(t, set)
	assert.Empty(t, set.Prayers)
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	gate := make(chan struct{})
	slow := &fakeTimings{day: sampleDay(), gate: gate}
	engine := service.NewPrayerEngine(db, slow, offlineLabel)
	q := service.PrayerQuery{Date: day(t, "2026-03-10 10:00"), City: "old"}

	done := make(chan error, 1)
	go func() {
		_, err := engine.Fetch(context.Background(), q)
		done <- err
	}()
	require.Eventually(t, func() bool {
		slow.mu.Lock()
		defer slow.mu.Unlock()
		return slow.calls == 1
	}, time.Second, 5*time.Millisecond)

	slow.mu.Lock()
	slow.gate = nil
	slow.mu.Unlock()
	q.City = "new"
	set, err := engine.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "new", set.City)

	close(gate)
	assert.ErrorIs(t, <-done, service.ErrSuperseded)
	assert.Equal(t, "new", engine.Current().City)
}

func TestPrayerAdjustmentAndMethodSettings(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	name, err := service.SetPrayerAdjustment(db, "isha", 10)
	require.NoError(t, err)
	assert.Equal(t, service.PrayerIsha, name)

	_, err = service.SetPrayerAdjustment(db, "sunrise", 5)
	assert.Error(t, err)
	_, err = service.SetPrayerAdjustment(db, "fajr", 181)
	assert.Error(t, err)

	m, err := service.SetCalculationMethod(db, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.ID)
	_, err = service.SetCalculationMethod(db, 6)
	assert.Error(t, err)

	s, err := service.LoadSettings(db)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Prayer.Method)
	assert.Equal(t, map[string]int{service.PrayerIsha: 10}, s.Prayer.Adjustments)
}

func TestQueryFromSettingsNeedsCoordinates(t *testing.T) {
	t.Parallel()
	_, err := service.QueryFromSettings(service.DefaultSettings(), time.Now())
	assert.ErrorIs(t, err, service.ErrLocationUnset)

	s := service.DefaultSettings()
	s.Prayer.SavedCoords = &model.Coordinates{Lat: 1, Lon: 2}
	q, err := service.QueryFromSettings(s, time.Now())
	require.NoError(t, err)
	assert.Equal(t, service.DefaultMethod, q.Method)
	assert.Equal(t, service.DefaultCity, q.City)
}
