package main

import "testing"

const testConfidenceFloor = 0.4

func TestScoreIdenticalTitles(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	got := s.Score("HP Victus 15 Gaming Laptop", "HP Victus 15 Gaming Laptop")
	if got != 1.0 {
		t.Errorf("self score = %v, want 1.0", got)
	}
}

func TestScoreScenarios(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())
	seller := "HP Victus 15 Gaming Laptop"

	tests := []struct {
		name      string
		candidate string
		match     bool
	}{
		{"same brand different series", "HP Pavilion 14 Core i5", false},
		{"same brand same model", "HP Victus 15 Core i5 8GB RAM", true},
		{"different brand similar title", "Dell Inspiron 15 Gaming Laptop", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(seller, tt.candidate)
			if tt.match && got < testConfidenceFloor {
				t.Errorf("Score(%q, %q) = %v, want >= %v", seller, tt.candidate, got, testConfidenceFloor)
			}
			if !tt.match && got >= testConfidenceFloor {
				t.Errorf("Score(%q, %q) = %v, want < %v", seller, tt.candidate, got, testConfidenceFloor)
			}
		})
	}
}

// A brand mismatch must sink a pair even when every other attribute agrees.
func TestScoreBrandDominates(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	got := s.Score("HP 15 Gaming Laptop", "Dell 15 Gaming Laptop")
	if got >= testConfidenceFloor {
		t.Errorf("cross-brand score = %v, want < %v", got, testConfidenceFloor)
	}

	same := s.Score("HP 15 Gaming Laptop", "HP 15 Gaming Laptop")
	if same <= got {
		t.Errorf("same-brand score %v not above cross-brand score %v", same, got)
	}
}

func TestScoreSymmetric(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	pairs := [][2]string{
		{"HP Victus 15 Gaming Laptop", "HP Pavilion 14 Core i5"},
		{"Dell Inspiron 15", "Lenovo IdeaPad 3"},
		{"red widget", "blue gadget"},
	}
	for _, p := range pairs {
		ab := s.Score(p[0], p[1])
		ba := s.Score(p[1], p[0])
		if ab != ba {
			t.Errorf("Score(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	a, b := "HP Victus 15 Gaming Laptop", "HP Victus 15 Core i5 8GB RAM"
	first := s.Score(a, b)
	for i := 0; i < 10; i++ {
		if got := s.Score(a, b); got != first {
			t.Fatalf("run %d: score %v, want %v", i, got, first)
		}
	}
}

// Titles with no extractable features fall back to pure string similarity.
func TestScoreFeaturelessFallback(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	if got := s.Score("red widget", "red widget"); got != 1.0 {
		t.Errorf("identical featureless titles = %v, want 1.0", got)
	}
	if got := s.Score("red widget", "blue gadget"); got >= testConfidenceFloor {
		t.Errorf("unrelated featureless titles = %v, want < %v", got, testConfidenceFloor)
	}
}

func TestScoreNeverExceedsOne(t *testing.T) {
	s := NewSimilarityScorer(DefaultVocabulary())

	titles := []string{
		"HP Victus 15 Gaming Laptop",
		"HP Victus 15 Gaming Laptop Core i5 Touch",
		"Dell Inspiron 15 Gaming",
		"abc",
	}
	for _, a := range titles {
		for _, b := range titles {
			if got := s.Score(a, b); got > 1.0 {
				t.Errorf("Score(%q, %q) = %v, exceeds 1.0", a, b, got)
			}
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"victus", "pavilion", 6},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := similarityRatio("abc", "abc"); got != 1.0 {
		t.Errorf("equal strings = %v, want 1.0", got)
	}
	if got := similarityRatio("", "abc"); got != 0.0 {
		t.Errorf("empty vs non-empty = %v, want 0.0", got)
	}
	if got := similarityRatio("abcd", "abcx"); got != 0.75 {
		t.Errorf("one edit in four = %v, want 0.75", got)
	}
	// Multi-byte runes count once in the denominator.
	if got := similarityRatio("héllo", "hello"); got != 0.8 {
		t.Errorf("one edit in five runes = %v, want 0.8", got)
	}
}
