package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	content := `{
		"brands": [
			{"token": "framework", "canonical": "framework"},
			{"token": "hp", "canonical": "hp"}
		],
		"series": ["omnibook"]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	vocab, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vocab.Brands) != 2 || vocab.Brands[0].Token != "framework" {
		t.Errorf("brands not taken from file: %v", vocab.Brands)
	}
	if len(vocab.Series) != 1 || vocab.Series[0] != "omnibook" {
		t.Errorf("series not taken from file: %v", vocab.Series)
	}

	// Sections absent from the file keep the built-in tables.
	defaults := DefaultVocabulary()
	if len(vocab.StopWords) != len(defaults.StopWords) {
		t.Errorf("stop words should fall back to defaults, got %v", vocab.StopWords)
	}
	if len(vocab.FeatureTags) != len(defaults.FeatureTags) {
		t.Errorf("feature tags should fall back to defaults, got %v", vocab.FeatureTags)
	}
}

func TestLoadVocabularyErrors(t *testing.T) {
	if _, err := LoadVocabulary("/does/not/exist.json"); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVocabulary(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

// A vocabulary loaded from configuration drives extraction the same way the
// built-in one does.
func TestExtractorUsesLoadedVocabulary(t *testing.T) {
	vocab := &Vocabulary{
		Brands:      []BrandEntry{{"framework", "framework"}},
		Series:      []string{"omnibook"},
		FeatureTags: []FeatureTag{{"rugged", "rugged"}},
		StopWords:   []string{"laptop"},
	}
	e := NewFeatureExtractor(vocab)

	f := e.Extract("Framework OmniBook 14 Rugged Laptop")
	if f.Brand != "framework" {
		t.Errorf("brand = %q, want framework", f.Brand)
	}
	if f.ModelSeries != "omnibook" || f.ModelNumber != "14" {
		t.Errorf("model = %q/%q, want omnibook/14", f.ModelSeries, f.ModelNumber)
	}
	if len(f.SpecialFeatures) != 1 || f.SpecialFeatures[0] != "rugged" {
		t.Errorf("special features = %v, want [rugged]", f.SpecialFeatures)
	}
}
