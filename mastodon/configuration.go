package mastodon

import (
	"fmt"
	"strings"

	"fedinstance/config"

	"github.com/dustin/go-humanize"
)

// Configuration is the V2 instance feature configuration.
type Configuration struct {
	Statuses         StatusesConfig         `json:"statuses"`
	MediaAttachments MediaAttachmentsConfig `json:"media_attachments"`
	Polls            PollsConfig            `json:"polls"`
	Accounts         AccountsConfig         `json:"accounts"`
}

type StatusesConfig struct {
	MaxCharacters            int `json:"max_characters"`
	MaxMediaAttachments      int `json:"max_media_attachments"`
	CharactersReservedPerURL int `json:"characters_reserved_per_url"`
}

type MediaAttachmentsConfig struct {
	SupportedMimeTypes []string `json:"supported_mime_types"`
	ImageSizeLimit     int64    `json:"image_size_limit"`
	ImageMatrixLimit   int64    `json:"image_matrix_limit"`
}

type PollsConfig struct {
	MaxOptions             int `json:"max_options"`
	MaxCharactersPerOption int `json:"max_characters_per_option"`
	MinExpiration          int `json:"min_expiration"`
	MaxExpiration          int `json:"max_expiration"`
}

type AccountsConfig struct {
	MaxFeaturedTags int `json:"max_featured_tags"`
}

// 5760x5760 pixels
const defaultImageMatrixLimit = 33177600

// SupportedImageTypes lists the image types accepted for upload.
var SupportedImageTypes = []string{"image/gif", "image/jpeg", "image/png"}

// MaxStatusCharacters is config.api_import_size, falling back to
// config.max_import_size when unset. Non-numeric values count as 0.
func MaxStatusCharacters(cfg config.Reader) int {
	if v := config.Get(cfg, "config", "api_import_size"); v.Has() {
		return config.IntVal(v.Value())
	}
	return config.Int(cfg, "config", "max_import_size", 0)
}

func NewConfiguration(cfg config.Reader) (Configuration, error) {
	sizeLimit, err := parseByteShorthand(config.String(cfg, "system", "maximagesize", ""))
	if err != nil {
		return Configuration{}, fmt.Errorf("invalid system.maximagesize: %w", err)
	}

	matrixLimit := int64(defaultImageMatrixLimit)
	if length := int64(config.Int(cfg, "system", "max_image_length", 0)); length > 0 {
		matrixLimit = length * length
	}

	return Configuration{
		Statuses: StatusesConfig{
			MaxCharacters:            MaxStatusCharacters(cfg),
			MaxMediaAttachments:      4,
			CharactersReservedPerURL: 0,
		},
		MediaAttachments: MediaAttachmentsConfig{
			SupportedMimeTypes: append([]string(nil), SupportedImageTypes...),
			ImageSizeLimit:     sizeLimit,
			ImageMatrixLimit:   matrixLimit,
		},
		Polls: PollsConfig{
			MaxOptions:             4,
			MaxCharactersPerOption: 25,
			MinExpiration:          300,
			MaxExpiration:          2629746,
		},
		Accounts: AccountsConfig{
			MaxFeaturedTags: 0,
		},
	}, nil
}

// parseByteShorthand reads sizes such as "800k" or "8M" with binary units.
func parseByteShorthand(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	switch s[len(s)-1] {
	case 'k', 'K', 'm', 'M', 'g', 'G', 't', 'T':
		s += "iB"
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
