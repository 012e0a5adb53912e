package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesFromConfig(t *testing.T) {
	rules := RulesFromConfig(fakeConfig{
		"system.tosdisplay": "1",
		"system.tostext":    "1. Be nice\n2. No **spam**, no\n   ads\n\nBreaking these gets you &amp; your posts removed.\n",
	})
	assert.Equal(t, []Rule{
		{ID: "1", Text: "Be nice"},
		{ID: "2", Text: "No spam, no ads"},
		{ID: "3", Text: "Breaking these gets you & your posts removed."},
	}, rules)
}

func TestRulesFromConfigHidden(t *testing.T) {
	rules := RulesFromConfig(fakeConfig{"system.tostext": "1. Be nice"})
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestRulesFromConfigStripsMarkup(t *testing.T) {
	rules := RulesFromConfig(fakeConfig{
		"system.tosdisplay": "true",
		"system.tostext":    "<script>alert(1)</script>\n\n- [Read the FAQ](https://example.com/faq)\n",
	})
	assert.Equal(t, []Rule{{ID: "1", Text: "Read the FAQ"}}, rules)
}
