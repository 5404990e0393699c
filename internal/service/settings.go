package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const (
	MinFontSize = 14
	MaxFontSize = 40
)

type settingField struct {
	get func(s *settingsView) string
	set func(s *settingsView, value string) error
}

type settingsView struct {
	FontSize     *int
	Vibration    *bool
	DarkMode     *bool
	Morning      *bool
	Evening      *bool
	Sleep        *bool
	Ramadan      *bool
	LastTenDays  *bool
	Method       *int
	AutoLocation *bool
}

func boolField(pick func(v *settingsView) *bool) settingField {
	return settingField{
		get: func(v *settingsView) string { return strconv.FormatBool(*pick(v)) },
		set: func(v *settingsView, value string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", value)
			}
			*pick(v) = b
			return nil
		},
	}
}

var settingFields = map[string]settingField{
	"font_size": {
		get: func(v *settingsView) string { return strconv.Itoa(*v.FontSize) },
		set: func(v *settingsView, value string) error {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < MinFontSize || n > MaxFontSize {
				return fmt.Errorf("font size must be between %d and %d", MinFontSize, MaxFontSize)
			}
			*v.FontSize = n
			return nil
		},
	},
	"vibration":                   boolField(func(v *settingsView) *bool { return v.Vibration }),
	"dark_mode":                   boolField(func(v *settingsView) *bool { return v.DarkMode }),
	"notifications.morning":       boolField(func(v *settingsView) *bool { return v.Morning }),
	"notifications.evening":       boolField(func(v *settingsView) *bool { return v.Evening }),
	"notifications.sleep":         boolField(func(v *settingsView) *bool { return v.Sleep }),
	"notifications.ramadan":       boolField(func(v *settingsView) *bool { return v.Ramadan }),
	"notifications.last_ten_days": boolField(func(v *settingsView) *bool { return v.LastTenDays }),
	"prayer.auto_location":        boolField(func(v *settingsView) *bool { return v.AutoLocation }),
	"prayer.method": {
		get: func(v *settingsView) string { return strconv.Itoa(*v.Method) },
		set: func(v *settingsView, value string) error {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("method must be a number")
			}
			if _, ok := LookupMethod(n); !ok {
				return fmt.Errorf("unknown calculation method %d", n)
			}
			*v.Method = n
			return nil
		},
	},
}

func SettingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetSetting updates one flat settings key such as "dark_mode" or
// "notifications.morning".
func SetSetting(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	field, ok := settingFields[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(SettingKeys(), ", "))
	}
	s, err := LoadSettings(db)
	if err != nil {
		return err
	}
	if err := field.set(viewOf(&s), value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return SaveSettings(db, s)
}

// ListSettings flattens the stored settings into key/value strings.
func ListSettings(db *sql.DB) (map[string]string, error) {
	s, err := LoadSettings(db)
	if err != nil {
		return nil, err
	}
	v := viewOf(&s)
	out := make(map[string]string, len(settingFields)+2)
	for k, f := range settingFields {
		out[k] = f.get(v)
	}
	out["prayer.city"] = s.Prayer.SavedCity
	if c := s.Prayer.SavedCoords; c != nil {
		out["prayer.coords"] = fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
	} else {
		out["prayer.coords"] = ""
	}
	for _, name := range []string{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha} {
		out["prayer.adjust."+strings.ToLower(name)] = strconv.Itoa(s.Prayer.Adjustments[name])
	}
	return out, nil
}

func viewOf(s *model.AppSettings) *settingsView {
	return &settingsView{
		FontSize:     &s.FontSize,
		Vibration:    &s.Vibration,
		DarkMode:     &s.DarkMode,
		Morning:      &s.Notifications.Morning,
		Evening:      &s.Notifications.Evening,
		Sleep:        &s.Notifications.Sleep,
		Ramadan:      &s.Notifications.Ramadan,
		LastTenDays:  &s.Notifications.LastTenDays,
		Method:       &s.Prayer.Method,
		AutoLocation: &s.Prayer.AutoLocation,
	}
}
