package app

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"

	"github.com/inkgrade/core/internal/config"
)

// corsPolicy builds the CORS configuration. The tool usually sits on
// localhost behind a desktop shell, so development mode and an empty
// allowlist both admit every origin; a configured allowlist is matched
// exactly, with "*.domain" wildcards for reverse-proxied setups.
func corsPolicy(cfg *config.AppConfig) cors.Config {
	policy := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowed := cfg.AllowedOrigins
	if cfg.IsDev() || len(allowed) == 0 {
		policy.AllowOriginFunc = func(string) bool { return true }
		return policy
	}
	policy.AllowOriginFunc = func(origin string) bool {
		return originAllowed(allowed, origin)
	}
	return policy
}

// originAllowed matches an Origin header against the allowlist. Patterns
// may name a full origin, a bare host, or a "*.domain" wildcard covering
// the domain and its subdomains.
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	for _, pattern := range patterns {
		if pattern == origin || pattern == host {
			return true
		}
		if root, ok := strings.CutPrefix(pattern, "*."); ok {
			if host == root || strings.HasSuffix(host, "."+root) {
				return true
			}
		}
	}
	return false
}
