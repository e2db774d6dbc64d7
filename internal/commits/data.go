package commits

import "time"

const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultUserAgent = "last-updated/1.0"

	acceptHeader = "application/vnd.github+json"
	// commit listings for one path with per_page=1 are tiny; anything
	// larger is not a response we want to buffer
	maxBodyBytes = 1 << 20
)

// ClientParam describes how to reach the commit-history API.
type ClientParam struct {
	baseURL   string
	userAgent string
	token     string
	timeout   time.Duration
}

// NewClientParam builds a ClientParam. Empty values fall back to the
// public API and the default user agent. A zero timeout means the request
// is bounded only by the caller's context.
func NewClientParam(baseURL, userAgent string, timeout time.Duration) ClientParam {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return ClientParam{
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// WithToken returns a copy of p that authenticates with token.
// Only use this where the process is trusted with the secret (a build
// machine, a server); the default is to send no credential at all.
func (p ClientParam) WithToken(token string) ClientParam {
	p.token = token
	return p
}

func (p ClientParam) BaseURL() string {
	return p.baseURL
}

func (p ClientParam) UserAgent() string {
	return p.userAgent
}

func (p ClientParam) Timeout() time.Duration {
	return p.timeout
}

func (p ClientParam) HasToken() bool {
	return p.token != ""
}
