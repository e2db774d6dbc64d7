package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL turns an API root such as "HTTPS://GHE.example.com:443/api/v3/"
// into the form request paths are appended to ("https://ghe.example.com/api/v3").
//
// Rules:
//   - scheme must be http or https, host must be present
//   - scheme and host are lowercased
//   - default ports are omitted (:80 for http, :443 for https)
//   - trailing slashes are removed, including a lone "/"
//   - query, fragment and user info are dropped
//
// NormalizeBaseURL is idempotent.
func NormalizeBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}

	base := *parsed
	base.Scheme = strings.ToLower(base.Scheme)
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if base.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	base.Host = strings.ToLower(base.Host)

	if host, port := base.Hostname(), base.Port(); port != "" {
		if (base.Scheme == "http" && port == "80") ||
			(base.Scheme == "https" && port == "443") {
			base.Host = host
		}
	}

	base.Path = strings.TrimRight(base.Path, "/")
	base.RawPath = ""
	base.User = nil
	base.RawQuery = ""
	base.ForceQuery = false
	base.Fragment = ""
	base.RawFragment = ""

	return base.String(), nil
}
