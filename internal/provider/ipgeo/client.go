// Package ipgeo approximates the device position from the public IP address.
// It is the terminal stand-in for a browser geolocation prompt.
package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://ip-api.com"

type Position struct {
	Lat  float64
	Lon  float64
	City string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Locate(ctx context.Context) (Position, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/json/?fields=status,message,lat,lon,city", nil)
	if err != nil {
		return Position{}, fmt.Errorf("create ipgeo request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("execute ipgeo request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, fmt.Errorf("read ipgeo response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Position{}, fmt.Errorf("ipgeo request failed with status %d", resp.StatusCode)
	}
	var parsed struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		City    string  `json:"city"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Position{}, fmt.Errorf("decode ipgeo response: %w", err)
	}
	if parsed.Status != "success" {
		return Position{}, fmt.Errorf("ipgeo lookup failed: %s", parsed.Message)
	}
	return Position{Lat: parsed.Lat, Lon: parsed.Lon, City: strings.TrimSpace(parsed.City)}, nil
}
