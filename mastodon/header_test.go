package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMastodonBannerPath(t *testing.T) {
	path, err := NewHeader(fakeConfig{}).MastodonBannerPath()
	require.NoError(t, err)
	assert.Equal(t, DefaultBannerPath, path)

	path, err = NewHeader(fakeConfig{"api.mastodon_banner": "/images/custom.png"}).MastodonBannerPath()
	require.NoError(t, err)
	assert.Equal(t, "/images/custom.png", path)

	_, err = NewHeader(fakeConfig{"api.mastodon_banner": "images/custom.png"}).MastodonBannerPath()
	assert.Error(t, err)
	_, err = NewHeader(fakeConfig{"api.mastodon_banner": "/../etc/passwd"}).MastodonBannerPath()
	assert.Error(t, err)
}
