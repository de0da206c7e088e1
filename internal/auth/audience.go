package auth

import (
	"net/url"
	"strings"
)

// ResolveAudience normalizes the configured OAuth audience against the
// application base URL. The backend API lives under /api, so values that
// name the application itself are rewritten to point there:
//
//   - empty value defaults to "<base>/api"
//   - values already ending in /api pass through
//   - the bare application domain (any scheme, optional www) gets /api
//     appended
//   - URLs whose host is under the application domain with an empty path
//     get /api appended
//   - anything else, including unparsable values, passes through unchanged
func ResolveAudience(audience, baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.TrimSpace(audience) == "" {
		return base + "/api"
	}

	a := strings.TrimSpace(audience)
	a = strings.TrimSuffix(a, "/")

	if strings.HasSuffix(a, "/api") {
		return a
	}

	appHost := hostOf(base)
	if stripSchemeAndWWW(a) == appHost {
		return a + "/api"
	}

	u, err := url.Parse(a)
	if err != nil || u.Host == "" {
		return a
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if u.Path == "" && strings.HasSuffix(host, appHost) {
		return a + "/api"
	}

	return a
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return stripSchemeAndWWW(rawURL)
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func stripSchemeAndWWW(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimPrefix(s, "www.")
}
