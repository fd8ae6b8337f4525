package util

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalSourceURL validates a notice source URL and returns it with a
// lower-cased scheme and host and no fragment.
func CanonicalSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("source url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("source url %q: %w", raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("source url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("source url %q: missing host", raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

// HostOf returns the host of raw, or "_" when it has none.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "_"
	}
	return u.Host
}
