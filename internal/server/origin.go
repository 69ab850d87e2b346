// Origin allow-list enforcement for WebSocket upgrade requests.
package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originChecker validates the Origin header of upgrade requests against
// a configured allow-list. A single "*" entry allows everything.
type originChecker struct {
	allowed  map[string]struct{}
	allowAll bool
	logger   *slog.Logger
}

func newOriginChecker(origins []string, logger *slog.Logger) *originChecker {
	oc := &originChecker{
		allowed: make(map[string]struct{}, len(origins)),
		logger:  logger,
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(origin)
		if !ok {
			logger.Warn("ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		oc.allowed[normalized] = struct{}{}
	}
	return oc
}

// normalizeOrigin reduces an origin to lowercase scheme://host form.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// check implements the gorilla Upgrader CheckOrigin contract.
func (oc *originChecker) check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		oc.logger.Warn("blocked connection with unparseable origin", "origin", origin)
		return false
	}

	if oc.allowAll {
		return true
	}
	if _, exists := oc.allowed[normalized]; exists {
		return true
	}

	oc.logger.Warn("blocked connection from disallowed origin", "origin", origin)
	return false
}
