package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ozsensors/bom-bridge/internal/validation"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	BureauBaseURL   string
	BureauUserAgent string
	BureauTimeout   time.Duration

	UpdateInterval time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	OverloadWindow       time.Duration
	OverloadThresholdPct int
	DegradedWindow       time.Duration
	DegradedErrorPct     int

	Locations []LocationConfig
}

// LocationConfig is one monitored site. Geohash is optional; when empty it is
// derived from the coordinates at startup.
type LocationConfig struct {
	Name      string
	Latitude  float64
	Longitude float64
	Geohash   string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Bureau struct {
		BaseURL   string `yaml:"base_url"`
		UserAgent string `yaml:"user_agent"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"bureau"`

	Collector struct {
		UpdateInterval string `yaml:"update_interval"`
	} `yaml:"collector"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Lifecycle struct {
		OverloadWindow       string `yaml:"overload_window"`
		OverloadThresholdPct int    `yaml:"overload_threshold_pct"`
		DegradedWindow       string `yaml:"degraded_window"`
		DegradedErrorPct     int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`

	Locations []struct {
		Name      string  `yaml:"name"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		Geohash   string  `yaml:"geohash"`
	} `yaml:"locations"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev).
// BOM_BASE_URL and BOM_USER_AGENT env vars override the file. Call from
// project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return parse(data)
}

// parse builds a Config from raw YAML, applying defaults, env overrides and
// per-location validation.
func parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.BureauBaseURL = strings.TrimSpace(os.Getenv("BOM_BASE_URL"))
	if cfg.BureauBaseURL == "" {
		cfg.BureauBaseURL = strings.TrimSpace(fc.Bureau.BaseURL)
	}
	cfg.BureauUserAgent = strings.TrimSpace(os.Getenv("BOM_USER_AGENT"))
	if cfg.BureauUserAgent == "" {
		cfg.BureauUserAgent = strings.TrimSpace(fc.Bureau.UserAgent)
	}
	cfg.BureauTimeout = parseDuration(fc.Bureau.Timeout, 10*time.Second)

	cfg.UpdateInterval = parseDuration(fc.Collector.UpdateInterval, 10*time.Minute)
	if cfg.UpdateInterval < time.Minute {
		// The bureau blocks aggressive pollers. One minute is already well
		// below their publish cadence.
		cfg.UpdateInterval = time.Minute
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	cfg.OverloadWindow = parseDuration(fc.Lifecycle.OverloadWindow, 60*time.Second)
	cfg.OverloadThresholdPct = fc.Lifecycle.OverloadThresholdPct
	if cfg.OverloadThresholdPct <= 0 {
		cfg.OverloadThresholdPct = 80
	}
	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 15*time.Minute)
	cfg.DegradedErrorPct = fc.Lifecycle.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}

	if len(fc.Locations) == 0 {
		return nil, fmt.Errorf("config: at least one location is required")
	}
	seen := make(map[string]bool, len(fc.Locations))
	for i, loc := range fc.Locations {
		name, err := validation.ValidateName(loc.Name)
		if err != nil {
			return nil, fmt.Errorf("config: locations[%d]: %w", i, err)
		}
		if err := validation.ValidateCoordinates(loc.Latitude, loc.Longitude); err != nil {
			return nil, fmt.Errorf("config: locations[%d] %s: %w", i, name, err)
		}
		gh := strings.TrimSpace(loc.Geohash)
		if gh != "" {
			if err := validation.ValidateGeohash(gh); err != nil {
				return nil, fmt.Errorf("config: locations[%d] %s: %w", i, name, err)
			}
		}
		if seen[name] {
			return nil, fmt.Errorf("config: duplicate location name %q", name)
		}
		seen[name] = true
		cfg.Locations = append(cfg.Locations, LocationConfig{
			Name:      name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Geohash:   gh,
		})
	}

	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal on empty
// string, parse error, or a non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
