package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// BrandEntry maps a token found in a title to its canonical brand tag.
type BrandEntry struct {
	Token     string `json:"token"`
	Canonical string `json:"canonical"`
}

// FeatureTag maps a substring found in a title to a canonical special-feature tag.
type FeatureTag struct {
	Token     string `json:"token"`
	Canonical string `json:"canonical"`
}

// Vocabulary holds the closed lookup tables driving extraction. Matching is
// ordered and first-match-wins, so every table is a slice rather than a map;
// map iteration order would make extraction (and therefore scoring)
// nondeterministic across runs.
type Vocabulary struct {
	// Brands in match priority order.
	Brands []BrandEntry `json:"brands"`
	// Series feeds a single alternation regex, so longer names that contain
	// shorter ones must come first.
	Series []string `json:"series"`
	// FeatureTags are collected as a set; several tokens may share a canonical tag.
	FeatureTags []FeatureTag `json:"feature_tags"`
	// StopWords are generic tokens stripped during normalization: category
	// nouns, unit words and listing-site boilerplate with no matching signal.
	StopWords []string `json:"stop_words"`
}

// DefaultVocabulary returns the built-in laptop vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Brands: []BrandEntry{
			{"hp", "hp"},
			{"hewlett packard", "hp"},
			{"hewlett-packard", "hp"},
			{"dell", "dell"},
			{"lenovo", "lenovo"},
			{"asus", "asus"},
			{"acer", "acer"},
			{"msi", "msi"},
			{"apple", "apple"},
			{"macbook", "apple"},
			{"samsung", "samsung"},
		},
		Series: []string{
			"pavilion",
			"inspiron",
			"thinkpad",
			"vivobook",
			"aspire",
			"victus",
			"latitude",
			"precision",
			"ideapad",
			"legion",
			"zenbook",
			"tuf",
			"rog",
		},
		FeatureTags: []FeatureTag{
			{"gaming", "gaming"},
			{"touch", "touch"},
			{"convertible", "convertible"},
			{"2-in-1", "2in1"},
			{"2 in 1", "2in1"},
			{"2in1", "2in1"},
			{"ultrabook", "ultrabook"},
			{"business", "business"},
		},
		StopWords: []string{
			"laptop",
			"computer",
			"pc",
			"the",
			"and",
			"with",
			"for",
			"of",
			"in",
			"inch",
			"inches",
			"price",
			"prices",
			"pakistan",
		},
	}
}

// LoadVocabulary reads a vocabulary table from a JSON file, so new brands and
// model lines can be added without a code change. Sections left empty in the
// file fall back to the built-in tables.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: read %s: %w", path, err)
	}

	v := &Vocabulary{}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("vocabulary: parse %s: %w", path, err)
	}

	defaults := DefaultVocabulary()
	if len(v.Brands) == 0 {
		v.Brands = defaults.Brands
	}
	if len(v.Series) == 0 {
		v.Series = defaults.Series
	}
	if len(v.FeatureTags) == 0 {
		v.FeatureTags = defaults.FeatureTags
	}
	if len(v.StopWords) == 0 {
		v.StopWords = defaults.StopWords
	}
	return v, nil
}
