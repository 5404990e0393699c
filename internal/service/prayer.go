package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/aladhan"
)

const (
	PrayerFajr    = "Fajr"
	PrayerSunrise = "Sunrise"
	PrayerDhuhr   = "Dhuhr"
	PrayerAsr     = "Asr"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isha"

	MaxAdjustmentMinutes = 180
)

var (
	ErrPrayerTimesUnavailable = errors.New("prayer times unavailable")
	ErrSuperseded             = errors.New("prayer time request superseded by a newer one")
	ErrLocationUnset          = errors.New("no saved location; run `hisn location here` or `hisn location select`")
)

var prayerOrder = []model.Prayer{
	{Name: PrayerFajr, ArabicName: "الفجر", Icon: "🌅"},
	{Name: PrayerSunrise, ArabicName: "الشروق", Icon: "☀️"},
	{Name: PrayerDhuhr, ArabicName: "الظهر", Icon: "☀️"},
	{Name: PrayerAsr, ArabicName: "العصر", Icon: "🌤️"},
	{Name: PrayerMaghrib, ArabicName: "المغرب", Icon: "🌇"},
	{Name: PrayerIsha, ArabicName: "العشاء", Icon: "🌙"},
}

type CalculationMethod struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
}

var CalculationMethods = []CalculationMethod{
	{ID: 1, Name: "University of Islamic Sciences, Karachi", NameAr: "جامعة العلوم الإسلامية، كراتشي"},
	{ID: 2, Name: "Islamic Society of North America (ISNA)", NameAr: "الجمعية الإسلامية لأمريكا الشمالية (ISNA)"},
	{ID: 3, Name: "Muslim World League (MWL)", NameAr: "رابطة العالم الإسلامي (MWL)"},
	{ID: 4, Name: "Umm Al-Qura University, Makkah", NameAr: "جامعة أم القرى، مكة المكرمة"},
	{ID: 5, Name: "Egyptian General Authority of Survey", NameAr: "الهيئة المصرية العامة للمساحة"},
	{ID: 8, Name: "Gulf Region", NameAr: "منطقة الخليج العربي"},
	{ID: 12, Name: "Union Organization Islamic de France", NameAr: "اتحاد المنظمات الإسلامية في فرنسا"},
	{ID: 13, Name: "Diyanet İşleri Başkanlığı, Turkey", NameAr: "رئاسة الشؤون الدينية، تركيا (Diyanet)"},
}

func LookupMethod(id int) (CalculationMethod, bool) {
	for _, m := range CalculationMethods {
		if m.ID == id {
			return m, true
		}
	}
	return CalculationMethod{}, false
}

// AdjustablePrayer reports whether name takes a minute offset, returning the
// canonical spelling. Sunrise has no adjustment.
func AdjustablePrayer(name string) (string, bool) {
	for _, p := range prayerOrder {
		if p.Name != PrayerSunrise && strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.Name, true
		}
	}
	return "", false
}

// BuildPrayerList turns canonical timings into the six display rows, applying
// per-prayer offsets to everything except sunrise.
func BuildPrayerList(timings map[string]string, adjustments map[string]int) ([]model.Prayer, error) {
	out := make([]model.Prayer, 0, len(prayerOrder))
	for _, p := range prayerOrder {
		raw, ok := timings[p.Name]
		if !ok {
			return nil, fmt.Errorf("timings missing %s", p.Name)
		}
		t := raw
		if adj := adjustments[p.Name]; adj != 0 && p.Name != PrayerSunrise {
			var err error
			if t, err = AdjustClock(raw, adj); err != nil {
				return nil, fmt.Errorf("adjust %s: %w", p.Name, err)
			}
		} else if _, _, err := ParseClock(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		p.Time = t
		out = append(out, p)
	}
	return out, nil
}

type PrayerQuery struct {
	Coords      model.Coordinates
	Date        time.Time
	Method      int
	Adjustments map[string]int
	City        string
}

func QueryFromSettings(s model.AppSettings, date time.Time) (PrayerQuery, error) {
	p := s.Prayer
	if p == nil {
		p = DefaultPrayerSettings()
	}
	if p.SavedCoords == nil {
		return PrayerQuery{}, ErrLocationUnset
	}
	return PrayerQuery{
		Coords:      *p.SavedCoords,
		Date:        date,
		Method:      p.Method,
		Adjustments: p.Adjustments,
		City:        p.SavedCity,
	}, nil
}

type TimingsClient interface {
	Timings(ctx context.Context, lat, lon float64, date time.Time, method int) (aladhan.DayTimings, []byte, error)
}

// PrayerEngine resolves prayer-time sets and holds the latest one. Every
// Fetch takes a generation number; a result is only applied when no newer
// Fetch has started since, so slow responses cannot overwrite fresh ones.
type PrayerEngine struct {
	db           *sql.DB
	client       TimingsClient
	offlineLabel string

	mu         sync.Mutex
	generation uint64
	current    *model.PrayerTimeSet
}

func NewPrayerEngine(db *sql.DB, client TimingsClient, offlineLabel string) *PrayerEngine {
	return &PrayerEngine{db: db, client: client, offlineLabel: offlineLabel}
}

func (e *PrayerEngine) nextGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// Fetch resolves times for q. On network failure it serves the cached set for
// the same date (Offline=true, nil error). With no cache the returned set has
// no prayers and the error wraps ErrPrayerTimesUnavailable.
func (e *PrayerEngine) Fetch(ctx context.Context, q PrayerQuery) (*model.PrayerTimeSet, error) {
	gen := e.nextGeneration()
	set, err := e.resolve(ctx, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		log.Debug().Uint64("generation", gen).Uint64("latest", e.generation).Msg("discarding superseded prayer times")
		return nil, ErrSuperseded
	}
	e.current = set
	return cloneSet(set), err
}

// Current returns a copy of the last applied set, or nil.
func (e *PrayerEngine) Current() *model.PrayerTimeSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSet(e.current)
}

func (e *PrayerEngine) resolve(ctx context.Context, q PrayerQuery) (*model.PrayerTimeSet, error) {
	key := aladhan.DateKey(q.Date)
	started := time.Now()
	day, _, err := e.client.Timings(ctx, q.Coords.Lat, q.Coords.Lon, q.Date, q.Method)
	if err == nil {
		var set *model.PrayerTimeSet
		if set, err = e.buildSet(key, q, day); err == nil {
			log.Debug().Str("date", key).Dur("took", time.Since(started)).Msg("fetched prayer times")
			if cerr := SavePrayerCache(e.db, set); cerr != nil {
				log.Warn().Err(cerr).Str("date", key).Msg("could not cache prayer times")
			}
			return set, nil
		}
	}

	log.Warn().Err(err).Str("date", key).Msg("prayer time fetch failed, trying offline cache")
	cached, ok, cerr := LoadPrayerCache(e.db, key)
	if cerr != nil {
		log.Warn().Err(cerr).Str("date", key).Msg("read prayer cache")
	}
	if ok {
		cached.Offline = true
		cached.Hijri.DayName = e.offlineLabel
		return cached, nil
	}
	return &model.PrayerTimeSet{DateKey: key, City: q.City}, fmt.Errorf("%w: %v", ErrPrayerTimesUnavailable, err)
}

func (e *PrayerEngine) buildSet(key string, q PrayerQuery, day aladhan.DayTimings) (*model.PrayerTimeSet, error) {
	prayers, err := BuildPrayerList(day.Timings, q.Adjustments)
	if err != nil {
		return nil, err
	}
	timings := make(map[string]string, len(day.Timings))
	for k, v := range day.Timings {
		timings[k] = v
	}
	return &model.PrayerTimeSet{
		DateKey: key,
		City:    q.City,
		Prayers: prayers,
		Hijri: model.HijriDate{
			Day:     day.Hijri.Day,
			MonthAr: day.Hijri.MonthAr,
			MonthEn: day.Hijri.MonthEn,
			Year:    day.Hijri.Year,
			DayName: day.WeekdayAr,
		},
		Timings:  timings,
		Timezone: day.Timezone,
	}, nil
}

// Spiritual derives midnight and the last third from the unadjusted sunset
// and dawn of set, anchored on base's calendar day.
func Spiritual(set *model.PrayerTimeSet, base time.Time) (SpiritualTimes, error) {
	if set == nil || len(set.Timings) == 0 {
		return SpiritualTimes{}, fmt.Errorf("no timings resolved")
	}
	return ComputeSpiritualTimes(set.Timings[PrayerMaghrib], set.Timings[PrayerFajr], base)
}

// CityClock expresses now in the zone the set's timings belong to, so a
// countdown for a city abroad counts against that city's clock. A missing or
// unknown zone leaves now as is.
func CityClock(set *model.PrayerTimeSet, now time.Time) time.Time {
	if set == nil || set.Timezone == "" {
		return now
	}
	loc, err := time.LoadLocation(set.Timezone)
	if err != nil {
		log.Debug().Err(err).Str("timezone", set.Timezone).Msg("unknown prayer timezone, using host clock")
		return now
	}
	return now.In(loc)
}

func cloneSet(s *model.PrayerTimeSet) *model.PrayerTimeSet {
	if s == nil {
		return nil
	}
	out := *s
	out.Prayers = append([]model.Prayer(nil), s.Prayers...)
	if s.Timings != nil {
		out.Timings = make(map[string]string, len(s.Timings))
		for k, v := range s.Timings {
			out.Timings[k] = v
		}
	}
	return &out
}

type prayerCachePayload struct {
	Prayers []model.Prayer    `json:"prayers"`
	Hijri   model.HijriDate   `json:"hijri"`
	Timings  map[string]string `json:"timings"`
	City     string            `json:"city"`
	Timezone string            `json:"timezone,omitempty"`
}

func SavePrayerCache(db *sql.DB, set *model.PrayerTimeSet) error {
	data, err := json.Marshal(prayerCachePayload{
		Prayers: set.Prayers,
		Hijri:   set.Hijri,
		Timings:  set.Timings,
		City:     set.City,
		Timezone: set.Timezone,
	})
	if err != nil {
		return fmt.Errorf("encode prayer cache: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO prayer_cache(date_key, payload, fetched_at)
VALUES(?, ?, ?)
ON CONFLICT(date_key) DO UPDATE SET payload=excluded.payload, fetched_at=excluded.fetched_at
`, set.DateKey, string(data), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert prayer cache: %w", err)
	}
	return nil
}

func LoadPrayerCache(db *sql.DB, dateKey string) (*model.PrayerTimeSet, bool, error) {
	var raw string
	err := db.QueryRow(`SELECT payload FROM prayer_cache WHERE date_key = ?`, dateKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query prayer cache: %w", err)
	}
	var p prayerCachePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, fmt.Errorf("decode prayer cache %s: %w", dateKey, err)
	}
	return &model.PrayerTimeSet{
		DateKey: dateKey,
		City:    p.City,
		Prayers: p.Prayers,
		Hijri:   p.Hijri,
		Timings:  p.Timings,
		Timezone: p.Timezone,
	}, true, nil
}

// SetPrayerAdjustment stores a signed minute offset for one of the five
// adjustable prayers.
func SetPrayerAdjustment(db *sql.DB, prayer string, minutes int) (string, error) {
	name, ok := AdjustablePrayer(prayer)
	if !ok {
		return "", fmt.Errorf("prayer %q cannot be adjusted (use Fajr, Dhuhr, Asr, Maghrib or Isha)", prayer)
	}
	if minutes < -MaxAdjustmentMinutes || minutes > MaxAdjustmentMinutes {
		return "", fmt.Errorf("adjustment must be between -%d and %d minutes", MaxAdjustmentMinutes, MaxAdjustmentMinutes)
	}
	s, err := LoadSettings(db)
	if err != nil {
		return "", err
	}
	if minutes == 0 {
		delete(s.Prayer.Adjustments, name)
	} else {
		s.Prayer.Adjustments[name] = minutes
	}
	return name, SaveSettings(db, s)
}

func SetCalculationMethod(db *sql.DB, id int) (CalculationMethod, error) {
	m, ok := LookupMethod(id)
	if !ok {
		return CalculationMethod{}, fmt.Errorf("unknown calculation method %d", id)
	}
	s, err := LoadSettings(db)
	if err != nil {
		return CalculationMethod{}, err
	}
	s.Prayer.Method = id
	return m, SaveSettings(db, s)
}
