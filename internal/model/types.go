package model

import "time"

type Category string

const (
	CategoryMorning       Category = "morning"
	CategoryEvening       Category = "evening"
	CategoryPrayer        Category = "prayer"
	CategorySleep         Category = "sleep"
	CategoryProtection    Category = "protection"
	CategorySupplications Category = "supplications"
	CategoryQuran         Category = "quran"
	CategorySirah         Category = "sirah"
)

var Categories = []Category{
	CategoryMorning,
	CategoryEvening,
	CategoryPrayer,
	CategorySleep,
	CategoryProtection,
	CategorySupplications,
	CategoryQuran,
	CategorySirah,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PracticeItem is a single dhikr with its repetition progress.
// Current is kept within [0, Count].
type PracticeItem struct {
	ID           string   `json:"id" yaml:"id"`
	Text         string   `json:"text" yaml:"text"`
	Count        int      `json:"count" yaml:"count"`
	CurrentCount int      `json:"currentCount" yaml:"-"`
	Source       string   `json:"source,omitempty" yaml:"source,omitempty"`
	Category     Category `json:"category" yaml:"category"`
	IsUserAdded  bool     `json:"isUserAdded,omitempty" yaml:"-"`
}

func (p PracticeItem) Completed() bool {
	return p.CurrentCount >= p.Count
}

type UserStats struct {
	Streak         int            `json:"streak"`
	LastUpdate     time.Time      `json:"lastUpdate"`
	CompletedToday []string       `json:"completedToday"`
	DailyProgress  map[string]int `json:"dailyProgress"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type PrayerSettings struct {
	Method       int            `json:"method"`
	Adjustments  map[string]int `json:"adjustments"`
	SavedCity    string         `json:"savedCity"`
	SavedCoords  *Coordinates   `json:"savedCoords"`
	AutoLocation bool           `json:"autoLocation"`
}

type NotificationSettings struct {
	Morning     bool `json:"morning"`
	Evening     bool `json:"evening"`
	Sleep       bool `json:"sleep"`
	Ramadan     bool `json:"ramadan"`
	LastTenDays bool `json:"lastTenDays"`
}

type AppSettings struct {
	FontSize      int                  `json:"fontSize"`
	Vibration     bool                 `json:"vibration"`
	DarkMode      bool                 `json:"darkMode"`
	Notifications NotificationSettings `json:"notifications"`
	Prayer        *PrayerSettings      `json:"prayer,omitempty"`
}

// Prayer is one row of a resolved prayer-time set. Time is a 24-hour HH:MM
// wall-clock string after adjustment.
type Prayer struct {
	Name       string `json:"name"`
	ArabicName string `json:"arabicName"`
	Icon       string `json:"icon"`
	Time       string `json:"time"`
}

type HijriDate struct {
	Day     string `json:"day"`
	MonthAr string `json:"monthAr"`
	MonthEn string `json:"monthEn"`
	Year    string `json:"year"`
	DayName string `json:"dayName"`
}

// PrayerTimeSet holds one day's times. Timezone is the IANA zone the clock
// strings are expressed in.
type PrayerTimeSet struct {
	DateKey  string            `json:"dateKey"`
	City     string            `json:"city"`
	Prayers  []Prayer          `json:"prayers"`
	Hijri    HijriDate         `json:"hijri"`
	Timings  map[string]string `json:"timings"`
	Timezone string            `json:"timezone,omitempty"`
	Offline  bool              `json:"offline"`
}

type Place struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type SurahMeta struct {
	Number                 int    `json:"number"`
	Name                   string `json:"name"`
	EnglishName            string `json:"englishName"`
	EnglishNameTranslation string `json:"englishNameTranslation"`
	NumberOfAyahs          int    `json:"numberOfAyahs"`
	RevelationType         string `json:"revelationType"`
}

type Ayah struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	NumberInSurah int    `json:"numberInSurah"`
}

type SurahDetail struct {
	SurahMeta
	Ayahs []Ayah `json:"ayahs"`
}
