package mastodon

import (
	"fmt"
	"strings"

	"fedinstance/config"
)

// DefaultBannerPath is served when no banner is configured.
const DefaultBannerPath = "/images/friendica-banner.jpg"

// Header resolves the server banner, relative to the base URL.
type Header struct {
	cfg config.Reader
}

func NewHeader(cfg config.Reader) *Header {
	return &Header{cfg: cfg}
}

// MastodonBannerPath returns api.mastodon_banner or the default banner.
func (h *Header) MastodonBannerPath() (string, error) {
	path := config.String(h.cfg, "api", "mastodon_banner", "")
	if path == "" {
		return DefaultBannerPath, nil
	}
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return "", fmt.Errorf("api.mastodon_banner %q is not an absolute path", path)
	}
	return path, nil
}
