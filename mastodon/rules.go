package mastodon

import (
	"strconv"
	"strings"

	"fedinstance/config"
)

// Rule is a server rule.
type Rule struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RulesFromConfig turns the terms of service text (system.tostext, Markdown)
// into one rule per non-empty line. No rules unless system.tosdisplay is set.
func RulesFromConfig(cfg config.Reader) []Rule {
	rules := []Rule{}
	if !config.Bool(cfg, "system", "tosdisplay", false) {
		return rules
	}

	text := htmlToPlaintext(renderMarkdown(config.String(cfg, "system", "tostext", "")))
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rules = append(rules, Rule{ID: strconv.Itoa(len(rules) + 1), Text: line})
	}
	return rules
}
