package alquran

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSurahsParsesMeta(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":{"surahs":{"count":2,"references":[
  {"number":1,"name":"سُورَةُ ٱلْفَاتِحَةِ","englishName":"Al-Faatiha","englishNameTranslation":"The Opening","numberOfAyahs":7,"revelationType":"Meccan"},
  {"number":2,"name":"سورة البقرة","englishName":"Al-Baqara","englishNameTranslation":"The Cow","numberOfAyahs":286,"revelationType":"Medinan"}
]}}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	surahs, raw, err := c.Surahs(context.Background())
	if err != nil {
		t.Fatalf("surahs: %v", err)
	}
	if len(raw) == 0 || len(surahs) != 2 {
		t.Fatalf("unexpected result: %d surahs", len(surahs))
	}
	if surahs[1].EnglishName != "Al-Baqara" || surahs[1].NumberOfAyahs != 286 {
		t.Fatalf("unexpected surah: %+v", surahs[1])
	}
}

func TestSearchTreatsNotFoundAsEmpty(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"data":"Not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	matches, err := c.Search(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestSurahRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	c := &Client{}
	if _, err := c.Surah(context.Background(), 115); err == nil {
		t.Fatalf("expected range error")
	}
}
