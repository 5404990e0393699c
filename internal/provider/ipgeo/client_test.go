package ipgeo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocate(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "lat": 24.71, "lon": 46.67, "city": "Riyadh"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	pos, err := c.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if pos.Lat != 24.71 || pos.Lon != 46.67 || pos.City != "Riyadh" {
		t.Fatalf("unexpected position: %+v", pos)
	}
}

func TestLocateReportsFailedStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.Locate(context.Background()); err == nil {
		t.Fatalf("expected failure for fail status")
	}
}
