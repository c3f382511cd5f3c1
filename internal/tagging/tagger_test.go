package tagging

import (
	"sort"
	"testing"
)

func TestNew(t *testing.T) {
	tagger := New()
	if tagger == nil {
		t.Fatal("New() returned nil")
	}
	if tagger.rules == nil {
		t.Fatal("New() returned tagger with nil rules")
	}
	if len(tagger.rules) == 0 {
		t.Fatal("New() returned tagger with empty rules")
	}
}

func TestInferTags_SingleMatch(t *testing.T) {
	tagger := New()

	tests := []struct {
		name        string
		title       string
		content     string
		expectedTag string
	}{
		{
			name:        "portrait in title",
			title:       "Studio portrait session with natural light",
			content:     "",
			expectedTag: "Portrait",
		},
		{
			name:        "landscape in content",
			title:       "Sunday morning",
			content:     "Hiked up before dawn to catch the mountain in first light",
			expectedTag: "Landscape",
		},
		{
			name:        "street keyword",
			title:       "Candid moments from the old town",
			content:     "",
			expectedTag: "Street",
		},
		{
			name:        "tutorial keyword",
			title:       "How to meter for backlit scenes",
			content:     "",
			expectedTag: "Tutorial",
		},
		{
			name:        "review keyword",
			title:       "Hands-on with the new 85mm",
			content:     "",
			expectedTag: "Review",
		},
		{
			name:        "film keyword",
			title:       "Back to 35mm after ten years",
			content:     "",
			expectedTag: "Film",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := tagger.InferTags(tt.title, tt.content)
			found := false
			for _, tag := range tags {
				if tag == tt.expectedTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("InferTags() did not return expected tag %q, got: %v", tt.expectedTag, tags)
			}
		})
	}
}

func TestInferTags_MultipleMatches(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags(
		"Wedding portrait review: which lens wins?",
		"Edited the whole ceremony set in Lightroom",
	)

	expectedTags := []string{"Wedding", "Portrait", "Review", "Gear", "Editing"}
	for _, expected := range expectedTags {
		found := false
		for _, tag := range tags {
			if tag == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected tag %q not found in %v", expected, tags)
		}
	}
}

func TestInferTags_NoMatches(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags("Random unrelated title", "Some content about cooking recipes")

	if len(tags) != 0 {
		t.Errorf("InferTags() should return empty slice for non-matching content, got: %v", tags)
	}
}

func TestInferTags_CaseInsensitive(t *testing.T) {
	tagger := New()

	tests := []struct {
		title       string
		expectedTag string
	}{
		{"MACRO droplets after the rain", "Macro"},
		{"macro droplets after the rain", "Macro"},
		{"LIGHTROOM workflow", "Editing"},
		{"lightroom workflow", "Editing"},
	}

	for _, tt := range tests {
		tags := tagger.InferTags(tt.title, "")
		found := false
		for _, tag := range tags {
			if tag == tt.expectedTag {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("InferTags(%q) should match %q case-insensitively, got: %v", tt.title, tt.expectedTag, tags)
		}
	}
}

func TestInferTags_NormalizesCompatibilityForms(t *testing.T) {
	tagger := New()

	// fullwidth characters fold to ASCII under NFKC
	tags := tagger.InferTags("ｍａｃｒｏ photography", "")
	found := false
	for _, tag := range tags {
		if tag == "Macro" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected fullwidth text to match after normalization, got: %v", tags)
	}
}

func TestInferTags_EmptyInput(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags("", "")
	if tags == nil {
		t.Error("InferTags() should return empty slice, not nil")
	}
	if len(tags) != 0 {
		t.Errorf("InferTags() on empty input should return empty slice, got: %v", tags)
	}
}

func TestAddRule(t *testing.T) {
	tagger := New()

	tagger.AddRule("Drone", []string{"drone", "aerial"})

	tags := tagger.InferTags("Aerial shots over the coastline", "")
	found := false
	for _, tag := range tags {
		if tag == "Drone" {
			found = true
			break
		}
	}
	if !found {
		t.Error("AddRule() did not add custom rule properly")
	}
}

func TestRemoveRule(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags("Street scenes from Lisbon", "")
	hasStreet := false
	for _, tag := range tags {
		if tag == "Street" {
			hasStreet = true
			break
		}
	}
	if !hasStreet {
		t.Fatal("Expected Street tag before removal")
	}

	tagger.RemoveRule("Street")

	tags = tagger.InferTags("Street scenes from Lisbon", "")
	for _, tag := range tags {
		if tag == "Street" {
			t.Error("Street tag should not be inferred after RemoveRule()")
		}
	}
}

func TestGetRules(t *testing.T) {
	tagger := New()

	rules := tagger.GetRules()

	// Verify rules is a copy (modifications don't affect original)
	rules["Test"] = []string{"test"}

	originalRules := tagger.GetRules()
	if _, exists := originalRules["Test"]; exists {
		t.Error("GetRules() should return a copy, not the original map")
	}

	expectedRules := []string{"Portrait", "Landscape", "Street", "Tutorial"}
	for _, rule := range expectedRules {
		if _, exists := originalRules[rule]; !exists {
			t.Errorf("Expected rule %q not found in GetRules()", rule)
		}
	}
}

func TestInferTags_OnlyMatchesOnce(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags("Portrait after portrait after portrait", "studio headshot model")

	portraitCount := 0
	for _, tag := range tags {
		if tag == "Portrait" {
			portraitCount++
		}
	}
	if portraitCount != 1 {
		t.Errorf("Expected exactly 1 Portrait tag, got %d", portraitCount)
	}
}

func TestInferTags_UniqueResults(t *testing.T) {
	tagger := New()

	tags := tagger.InferTags("macro macro macro street street", "macro street")

	seen := make(map[string]bool)
	for _, tag := range tags {
		if seen[tag] {
			t.Errorf("InferTags() returned duplicate tag: %s", tag)
		}
		seen[tag] = true
	}
}

func TestInferTags_ResultsAreDeterministic(t *testing.T) {
	tagger := New()
	title := "Wedding portrait review with the new lens"
	content := "Night shots edited in Lightroom on a travel trip"

	var firstResult []string
	for i := 0; i < 5; i++ {
		tags := tagger.InferTags(title, content)
		sort.Strings(tags)
		if i == 0 {
			firstResult = tags
		} else {
			if len(tags) != len(firstResult) {
				t.Errorf("Iteration %d: tag count mismatch, expected %d, got %d", i, len(firstResult), len(tags))
			}
			for j, tag := range tags {
				if j < len(firstResult) && tag != firstResult[j] {
					t.Errorf("Iteration %d: tag mismatch at index %d, expected %q, got %q", i, j, firstResult[j], tag)
				}
			}
		}
	}
}
