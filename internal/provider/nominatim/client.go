package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Locality picks the most specific populated-place name available.
func (a Address) Locality() string {
	for _, v := range []string{a.City, a.Town, a.Village, a.State} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

type Result struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("accept-language", "ar")

	body, err := c.get(ctx, "/reverse", q)
	if err != nil {
		return Address{}, err
	}
	var parsed struct {
		Error   string  `json:"error"`
		Address Address `json:"address"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Address{}, fmt.Errorf("decode nominatim reverse response: %w", err)
	}
	if parsed.Error != "" {
		return Address{}, fmt.Errorf("nominatim reverse: %s", parsed.Error)
	}
	return parsed.Address, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 8
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", strings.TrimSpace(query))
	q.Set("accept-language", "ar,en")
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/search", q)
	if err != nil {
		return nil, err
	}
	var parsed []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode nominatim search response: %w", err)
	}
	out := make([]Result, 0, len(parsed))
	for _, p := range parsed {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
		if errLat != nil || errLon != nil || strings.TrimSpace(p.DisplayName) == "" {
			continue
		}
		out = append(out, Result{DisplayName: strings.TrimSpace(p.DisplayName), Lat: lat, Lon: lon})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create nominatim request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	ua := c.UserAgent
	if ua == "" {
		ua = "hisn-cli/1.0"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute nominatim request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nominatim response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nominatim request failed with status %d", resp.StatusCode)
	}
	return body, nil
}
