// Package tagging infers content tags from photo captions and blog text
// using keyword rules.
package tagging

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Tagger matches keyword rules against free text to suggest tags
type Tagger struct {
	mu    sync.RWMutex
	rules map[string][]string
}

// New creates a tagger with the default photography rule set
func New() *Tagger {
	return &Tagger{
		rules: defaultRules(),
	}
}

func defaultRules() map[string][]string {
	return map[string][]string{
		"Portrait":      {"portrait", "headshot", "model", "studio"},
		"Landscape":     {"landscape", "mountain", "horizon", "valley", "seascape"},
		"Street":        {"street", "urban", "city", "candid"},
		"Wildlife":      {"wildlife", "bird", "animal", "safari"},
		"Macro":         {"macro", "close-up", "insect", "droplet"},
		"BlackAndWhite": {"black and white", "monochrome", "b&w", "grayscale"},
		"Night":         {"night", "astro", "stars", "milky way", "long exposure"},
		"Travel":        {"travel", "journey", "trip", "wanderlust"},
		"Wedding":       {"wedding", "bride", "groom", "ceremony"},
		"Film":          {"film", "analog", "35mm", "darkroom", "kodak"},
		"Gear":          {"lens", "camera body", "tripod", "flash", "filter"},
		"Tutorial":      {"tutorial", "how to", "guide", "tips", "step by step"},
		"Review":        {"review", "hands-on", "first impressions", "versus", "comparison"},
		"Editing":       {"lightroom", "photoshop", "editing", "preset", "retouch"},
	}
}

// normalize folds Unicode compatibility forms and lowercases, so decorated
// captions still match plain keyword rules.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// InferTags returns the tags whose keywords appear in the title or content.
// Each tag appears at most once. The result is never nil.
func (t *Tagger) InferTags(title, content string) []string {
	text := normalize(title + " " + content)

	t.mu.RLock()
	defer t.mu.RUnlock()

	tags := []string{}
	for tag, keywords := range t.rules {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}

	return tags
}

// AddRule registers or replaces a keyword rule
func (t *Tagger) AddRule(tag string, keywords []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	normalized := make([]string, len(keywords))
	for i, kw := range keywords {
		normalized[i] = normalize(kw)
	}
	t.rules[tag] = normalized
}

// RemoveRule deletes a keyword rule
func (t *Tagger) RemoveRule(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rules, tag)
}

// GetRules returns a copy of the current rule set
func (t *Tagger) GetRules() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rules := make(map[string][]string, len(t.rules))
	for tag, keywords := range t.rules {
		copied := make([]string, len(keywords))
		copy(copied, keywords)
		rules[tag] = copied
	}
	return rules
}
