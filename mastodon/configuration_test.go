package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	c, err := NewConfiguration(fakeConfig{
		"config.max_import_size":  "200000",
		"system.maximagesize":     "8M",
		"system.max_image_length": "2000",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusesConfig{MaxCharacters: 200000, MaxMediaAttachments: 4}, c.Statuses)
	assert.Equal(t, []string{"image/gif", "image/jpeg", "image/png"}, c.MediaAttachments.SupportedMimeTypes)
	assert.Equal(t, int64(8*1024*1024), c.MediaAttachments.ImageSizeLimit)
	assert.Equal(t, int64(4000000), c.MediaAttachments.ImageMatrixLimit)
	assert.Equal(t, 4, c.Polls.MaxOptions)
	assert.Equal(t, 0, c.Accounts.MaxFeaturedTags)
}

func TestNewConfigurationDefaults(t *testing.T) {
	c, err := NewConfiguration(fakeConfig{"system.max_image_length": "-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Statuses.MaxCharacters)
	assert.Equal(t, int64(0), c.MediaAttachments.ImageSizeLimit)
	assert.Equal(t, int64(33177600), c.MediaAttachments.ImageMatrixLimit)
}

func TestNewConfigurationInvalidImageSize(t *testing.T) {
	_, err := NewConfiguration(fakeConfig{"system.maximagesize": "huge"})
	assert.Error(t, err)
}

func TestParseByteShorthand(t *testing.T) {
	cases := map[string]int64{
		"":        0,
		"1048576": 1048576,
		"800k":    800 * 1024,
		"2G":      2 * 1024 * 1024 * 1024,
		" 1m ":    1024 * 1024,
	}
	for in, want := range cases {
		got, err := parseByteShorthand(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}
