// Package config resolves runtime settings that are not user data: service
// endpoints, timeouts and display labels. Precedence, lowest first: built-in
// defaults, hisn.yaml, .env, process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "HISN_"

type Endpoints struct {
	Aladhan   string `yaml:"aladhan"`
	Nominatim string `yaml:"nominatim"`
	IPGeo     string `yaml:"ipgeo"`
	AlQuran   string `yaml:"alquran"`
}

type Labels struct {
	CurrentLocation string `yaml:"current_location"`
	Offline         string `yaml:"offline"`
}

type Config struct {
	Endpoints      Endpoints     `yaml:"endpoints"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	LocateTimeout  time.Duration `yaml:"locate_timeout"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	SearchLimit    int           `yaml:"search_limit"`
	UserAgent      string        `yaml:"user_agent"`
	Labels         Labels        `yaml:"labels"`
}

func Default() Config {
	return Config{
		Endpoints: Endpoints{
			Aladhan:   "https://api.aladhan.com",
			Nominatim: "https://nominatim.openstreetmap.org",
			IPGeo:     "http://ip-api.com",
			AlQuran:   "https://api.alquran.cloud",
		},
		HTTPTimeout:    12 * time.Second,
		LocateTimeout:  10 * time.Second,
		SearchDebounce: 400 * time.Millisecond,
		SearchLimit:    8,
		UserAgent:      "hisn-cli/1.0 (+https://github.com/abdel2584/hisn-moslim-3)",
		Labels: Labels{
			CurrentLocation: "موقعك الحالي",
			Offline:         "وضع عدم الاتصال",
		},
	}
}

// Load builds the runtime config. A missing file is not an error; a file that
// exists but does not parse is.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ALADHAN_URL", &cfg.Endpoints.Aladhan)
	str("NOMINATIM_URL", &cfg.Endpoints.Nominatim)
	str("IPGEO_URL", &cfg.Endpoints.IPGeo)
	str("ALQURAN_URL", &cfg.Endpoints.AlQuran)
	str("USER_AGENT", &cfg.UserAgent)

	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, v, err)
		}
		*dst = d
		return nil
	}
	if err := dur("HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := dur("LOCATE_TIMEOUT", &cfg.LocateTimeout); err != nil {
		return err
	}
	if err := dur("SEARCH_DEBOUNCE", &cfg.SearchDebounce); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(envPrefix + "SEARCH_LIMIT"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %sSEARCH_LIMIT %q", envPrefix, v)
		}
		cfg.SearchLimit = n
	}
	return nil
}

// WriteDefault saves the built-in defaults to path unless a file is already
// there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config %s: %w", path, err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config %s: %w", path, err)
	}
	return true, nil
}
