package alquran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const (
	defaultBaseURL = "https://api.alquran.cloud"
	tafsirEdition  = "ar.jalalayn"
)

var errNotFound = errors.New("alquran: not found")

type Tafsir struct {
	AyahNumber    int
	NumberInSurah int
	SurahName     string
	Text          string
}

type SearchMatch struct {
	AyahNumber    int
	NumberInSurah int
	SurahNumber   int
	SurahName     string
	Text          string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// Surahs returns the surah index together with the raw response body so the
// caller can keep an offline copy.
func (c *Client) Surahs(ctx context.Context) ([]model.SurahMeta, []byte, error) {
	body, err := c.get(ctx, "/v1/meta")
	if err != nil {
		return nil, body, err
	}
	surahs, err := DecodeSurahs(body)
	return surahs, body, err
}

func DecodeSurahs(body []byte) ([]model.SurahMeta, error) {
	var parsed struct {
		Data struct {
			Surahs struct {
				References []model.SurahMeta `json:"references"`
			} `json:"surahs"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode alquran meta response: %w", err)
	}
	if len(parsed.Data.Surahs.References) == 0 {
		return nil, fmt.Errorf("alquran meta response has no surahs")
	}
	return parsed.Data.Surahs.References, nil
}

func (c *Client) Surah(ctx context.Context, number int) (model.SurahDetail, error) {
	if number < 1 || number > 114 {
		return model.SurahDetail{}, fmt.Errorf("surah number must be between 1 and 114")
	}
	body, err := c.get(ctx, fmt.Sprintf("/v1/surah/%d", number))
	if err != nil {
		return model.SurahDetail{}, err
	}
	var parsed struct {
		Data model.SurahDetail `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.SurahDetail{}, fmt.Errorf("decode alquran surah response: %w", err)
	}
	return parsed.Data, nil
}

func (c *Client) Tafsir(ctx context.Context, ayahNumber int) (Tafsir, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v1/ayah/%d/%s", ayahNumber, tafsirEdition))
	if err != nil {
		return Tafsir{}, err
	}
	var parsed struct {
		Data struct {
			Number        int    `json:"number"`
			NumberInSurah int    `json:"numberInSurah"`
			Text          string `json:"text"`
			Surah         struct {
				Name string `json:"name"`
			} `json:"surah"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Tafsir{}, fmt.Errorf("decode alquran tafsir response: %w", err)
	}
	return Tafsir{
		AyahNumber:    parsed.Data.Number,
		NumberInSurah: parsed.Data.NumberInSurah,
		SurahName:     parsed.Data.Surah.Name,
		Text:          strings.TrimSpace(parsed.Data.Text),
	}, nil
}

// Search runs a full-text query over the Arabic text. No matches is an empty
// result, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	body, err := c.get(ctx, "/v1/search/"+url.PathEscape(query)+"/all/ar")
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Data struct {
			Matches []struct {
				Number        int    `json:"number"`
				NumberInSurah int    `json:"numberInSurah"`
				Text          string `json:"text"`
				Surah         struct {
					Number int    `json:"number"`
					Name   string `json:"name"`
				} `json:"surah"`
			} `json:"matches"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode alquran search response: %w", err)
	}
	out := make([]SearchMatch, 0, len(parsed.Data.Matches))
	for _, m := range parsed.Data.Matches {
		out = append(out, SearchMatch{
			AyahNumber:    m.Number,
			NumberInSurah: m.NumberInSurah,
			SurahNumber:   m.Surah.Number,
			SurahName:     m.Surah.Name,
			Text:          m.Text,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create alquran request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute alquran request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read alquran response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return body, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("alquran request failed with status %d", resp.StatusCode)
	}
	return body, nil
}
