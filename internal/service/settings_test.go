package service_test

import (
	"testing"

	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

func TestSetSettingRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	if err := service.SetSetting(db, "Dark_Mode", "true"); err != nil {
		t.Fatalf("set dark_mode: %v", err)
	}
	if err := service.SetSetting(db, "notifications.sleep", "false"); err != nil {
		t.Fatalf("set notifications.sleep: %v", err)
	}
	if err := service.SetSetting(db, "font_size", "28"); err != nil {
		t.Fatalf("set font_size: %v", err)
	}

	all, err := service.ListSettings(db)
	if err != nil {
		t.Fatalf("list settings: %v", err)
	}
	want := map[string]string{
		"dark_mode":           "true",
		"notifications.sleep": "false",
		"font_size":           "28",
		"prayer.method":       "4",
		"prayer.city":         service.DefaultCity,
		"prayer.adjust.fajr":  "0",
	}
	for k, v := range want {
		if all[k] != v {
			t.Fatalf("expected %s=%q, got %q", k, v, all[k])
		}
	}
}

func TestSetSettingRejectsBadInput(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	cases := map[string]string{
		"font_size":     "9",
		"vibration":     "sometimes",
		"prayer.method": "99",
		"theme":         "dark",
	}
	for k, v := range cases {
		if err := service.SetSetting(db, k, v); err == nil {
			t.Fatalf("expected %s=%s to fail", k, v)
		}
	}
}
