package ratelimit

import (
	"strings"
)

// unlimited marks endpoints that are never rate limited
var unlimited = &EndpointConfig{}

// MatchEndpoint returns the configuration for a request, or nil when only
// the default applies. An exact path wins; otherwise the longest matching
// prefix pattern wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
