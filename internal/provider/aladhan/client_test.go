package aladhan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleTimings = `{
  "code": 200,
  "status": "OK",
  "data": {
    "timings": {"Fajr": "04:32", "Sunrise": "05:55", "Dhuhr": "11:48", "Asr": "15:05 (AST)", "Maghrib": "17:41", "Isha": "19:11"},
    "date": {
      "hijri": {"day": "13", "year": "1448", "month": {"number": 4, "en": "Rabīʿ al-thānī", "ar": "رَبيع الثاني"}},
      "gregorian": {"weekday": {"en": "Thursday", "ar": "الخميس"}}
    },
    "meta": {"timezone": "Asia/Riyadh"}
  }
}`

func TestTimingsParsesAladhanResponse(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleTimings))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	day, raw, err := c.Timings(context.Background(), 21.42, 39.82, time.Date(2026, 10, 15, 0, 0, 0, 0, time.Local), 4)
	if err != nil {
		t.Fatalf("timings: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body")
	}
	if gotPath != "/v1/timings/15-10-2026" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "method=4") || !strings.Contains(gotQuery, "timezone=auto") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if day.Timings["Fajr"] != "04:32" || day.Timings["Asr"] != "15:05" {
		t.Fatalf("unexpected timings: %+v", day.Timings)
	}
	if day.Hijri.Day != "13" || day.Hijri.Year != "1448" || day.WeekdayAr != "الخميس" {
		t.Fatalf("unexpected date info: %+v", day)
	}
	if day.Timezone != "Asia/Riyadh" {
		t.Fatalf("expected timezone from meta, got %q", day.Timezone)
	}
}

func TestTimingsReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.Timings(context.Background(), 0, 0, time.Now(), 4)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}
