package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "", renderMarkdown("  "))
	assert.Equal(t, "<p>Hello <em>world</em></p>", renderMarkdown("Hello *world*"))

	out := renderMarkdown("hi <script>alert(1)</script>")
	assert.NotContains(t, out, "script")
	assert.Contains(t, out, "hi")
}

func TestHTMLToPlaintext(t *testing.T) {
	assert.Equal(t, "\na b\n\nc\n", htmlToPlaintext("<p>a  <b>b</b></p><p>c</p>"))
	assert.Equal(t, "x\ny", htmlToPlaintext("x<br>y"))
	assert.Equal(t, "a b", htmlToPlaintext("a\n\n  b"))
}
