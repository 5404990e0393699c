package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com"

// Timings are the canonical HH:MM times keyed by Aladhan's prayer names
// (Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, plus auxiliary keys).
type Timings map[string]string

type Hijri struct {
	Day     string
	MonthAr string
	MonthEn string
	Year    string
}

type DayTimings struct {
	Timings   Timings
	Hijri     Hijri
	WeekdayAr string
	Timezone  string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// DateKey formats a date the way the timings endpoint and the offline cache
// expect it: DD-MM-YYYY.
func DateKey(t time.Time) string {
	return t.Format("02-01-2006")
}

func (c *Client) Timings(ctx context.Context, lat, lon float64, date time.Time, method int) (DayTimings, []byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("method", fmt.Sprintf("%d", method))
	q.Set("timezone", "auto")
	u := fmt.Sprintf("%s/v1/timings/%s?%s", base, DateKey(date), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return DayTimings{}, nil, fmt.Errorf("create aladhan request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return DayTimings{}, nil, fmt.Errorf("execute aladhan request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DayTimings{}, nil, fmt.Errorf("read aladhan response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return DayTimings{}, body, fmt.Errorf("aladhan request failed with status %d", resp.StatusCode)
	}

	var parsed timingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return DayTimings{}, body, fmt.Errorf("decode aladhan response: %w", err)
	}
	if parsed.Code != 0 && parsed.Code != http.StatusOK {
		return DayTimings{}, body, fmt.Errorf("aladhan returned code %d", parsed.Code)
	}
	if len(parsed.Data.Timings) == 0 {
		return DayTimings{}, body, fmt.Errorf("aladhan response has no timings")
	}

	timings := make(Timings, len(parsed.Data.Timings))
	for name, raw := range parsed.Data.Timings {
		timings[name] = cleanClock(raw)
	}
	hijri := parsed.Data.Date.Hijri
	return DayTimings{
		Timings: timings,
		Hijri: Hijri{
			Day:     hijri.Day,
			MonthAr: hijri.Month.Ar,
			MonthEn: hijri.Month.En,
			Year:    hijri.Year,
		},
		WeekdayAr: parsed.Data.Date.Gregorian.Weekday.Ar,
		Timezone:  parsed.Data.Meta.Timezone,
	}, body, nil
}

// cleanClock drops a trailing zone annotation such as "05:12 (EET)".
func cleanClock(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, ' '); i > 0 {
		raw = raw[:i]
	}
	return raw
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Hijri struct {
				Day   string `json:"day"`
				Year  string `json:"year"`
				Month struct {
					En string `json:"en"`
					Ar string `json:"ar"`
				} `json:"month"`
			} `json:"hijri"`
			Gregorian struct {
				Weekday struct {
					Ar string `json:"ar"`
				} `json:"weekday"`
			} `json:"gregorian"`
		} `json:"date"`
		Meta struct {
			Timezone string `json:"timezone"`
		} `json:"meta"`
	} `json:"data"`
}
