package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/ipgeo"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/nominatim"
)

const minSearchRunes = 2

var ErrLocationUnavailable = errors.New("device location unavailable")

type Locator interface {
	Locate(ctx context.Context) (ipgeo.Position, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (nominatim.Address, error)
	Search(ctx context.Context, query string, limit int) ([]nominatim.Result, error)
}

type LocationResult struct {
	City      string               `json:"city"`
	Coords    model.Coordinates    `json:"coords"`
	Times     *model.PrayerTimeSet `json:"times"`
	Persisted bool                 `json:"persisted"`
}

type LocationResolver struct {
	DB            *sql.DB
	Locator       Locator
	Geocoder      Geocoder
	Engine        *PrayerEngine
	LocateTimeout time.Duration
	SearchLimit   int
	FallbackLabel string
}

// ResolveCurrentLocation locates the host, names the place and loads prayer
// times for it. Settings are only written after a fresh fetch succeeds; a
// locate failure leaves them untouched.
func (r *LocationResolver) ResolveCurrentLocation(ctx context.Context, now time.Time) (LocationResult, error) {
	lctx := ctx
	if r.LocateTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, r.LocateTimeout)
		defer cancel()
	}
	pos, err := r.Locator.Locate(lctx)
	if err != nil {
		return LocationResult{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	coords := model.Coordinates{Lat: pos.Lat, Lon: pos.Lon}
	city := r.FallbackLabel
	if addr, err := r.Geocoder.Reverse(ctx, pos.Lat, pos.Lon); err != nil {
		log.Warn().Err(err).Msg("reverse geocoding failed, using generic label")
	} else if name := addr.Locality(); name != "" {
		city = name
	}
	return r.apply(ctx, city, coords, true, now)
}

// SearchPlace returns candidate places for query. Queries under two
// characters return nothing and make no request.
func (r *LocationResolver) SearchPlace(ctx context.Context, query string) ([]model.Place, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchRunes {
		return nil, nil
	}
	results, err := r.Geocoder.Search(ctx, query, r.SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Place, 0, len(results))
	for _, res := range results {
		out = append(out, model.Place{DisplayName: res.DisplayName, Lat: res.Lat, Lon: res.Lon})
	}
	return out, nil
}

// SelectPlace loads prayer times for a chosen search result and, on success,
// saves it as the fixed location.
func (r *LocationResolver) SelectPlace(ctx context.Context, p model.Place, now time.Time) (LocationResult, error) {
	return r.apply(ctx, PlaceName(p.DisplayName), model.Coordinates{Lat: p.Lat, Lon: p.Lon}, false, now)
}

// PlaceName is the first comma-separated segment of a geocoder display name.
func PlaceName(display string) string {
	name, _, _ := strings.Cut(display, ",")
	return strings.TrimSpace(name)
}

func (r *LocationResolver) apply(ctx context.Context, city string, coords model.Coordinates, auto bool, now time.Time) (LocationResult, error) {
	settings, err := LoadSettings(r.DB)
	if err != nil {
		return LocationResult{}, err
	}
	q := PrayerQuery{
		Coords:      coords,
		Date:        now,
		Method:      settings.Prayer.Method,
		Adjustments: settings.Prayer.Adjustments,
		City:        city,
	}
	res := LocationResult{City: city, Coords: coords}
	set, err := r.Engine.Fetch(ctx, q)
	res.Times = set
	if err != nil {
		return res, err
	}
	if set.Offline {
		log.Warn().Str("city", city).Msg("served cached prayer times, location not saved")
		return res, nil
	}

	settings.Prayer.SavedCity = city
	c := coords
	settings.Prayer.SavedCoords = &c
	settings.Prayer.AutoLocation = auto
	if err := SaveSettings(r.DB, settings); err != nil {
		return res, err
	}
	res.Persisted = true
	return res, nil
}
