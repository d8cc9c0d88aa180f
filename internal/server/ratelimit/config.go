package ratelimit

import (
	"time"

	"github.com/jonathan/employee-cv/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern; a trailing "/" matches by prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings converts the application rate limit settings
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   durationOr(s.DefaultWindow, time.Minute),
		CleanupInterval: durationOr(s.CleanupInterval, 5*time.Minute),
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Re-embedding every record is the most expensive call
		{Path: "/records/load", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/records/load/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		// Generation calls
		{Path: "/cv/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/ask", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// One embedding call each
		{Path: "/suggestions", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return set
}
