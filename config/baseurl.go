package config

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL is the public origin of the server, e.g. https://example.com/social.
type BaseURL struct {
	u *url.URL
}

func ParseBaseURL(raw string) (*BaseURL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", raw)
	}
	return &BaseURL{u: &url.URL{
		Scheme: u.Scheme,
		Host:   strings.ToLower(u.Host),
		Path:   strings.TrimRight(u.Path, "/"),
	}}, nil
}

// BaseURLFromConfig reads system.url.
func BaseURLFromConfig(r Reader) (*BaseURL, error) {
	raw, ok := r.Value("system", "url")
	if !ok || raw == "" {
		return nil, fmt.Errorf("system.url is not configured")
	}
	return ParseBaseURL(raw)
}

func (b *BaseURL) Host() string {
	return b.u.Host
}

func (b *BaseURL) String() string {
	return b.u.String()
}
