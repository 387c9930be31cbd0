package main

import (
	"reflect"
	"testing"
)

func TestExtractBrand(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	tests := []struct {
		title string
		want  string
	}{
		{"HP Victus 15 Gaming Laptop", "hp"},
		{"Hewlett Packard Pavilion 15", "hp"},
		{"Dell Inspiron 15", "dell"},
		{"MacBook Air M2", "apple"},
		{"Apple MacBook Pro", "apple"},
		{"NoName Generic Laptop", ""},
	}
	for _, tt := range tests {
		if got := e.Extract(tt.title).Brand; got != tt.want {
			t.Errorf("Extract(%q).Brand = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestExtractModel(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	f := e.Extract("HP Victus 15 Gaming Laptop")
	if f.ModelSeries != "victus" || f.ModelNumber != "15" {
		t.Errorf("got series=%q number=%q, want victus/15", f.ModelSeries, f.ModelNumber)
	}

	// Series token without a trailing number is not a model.
	f = e.Extract("Lenovo ThinkPad X1 Carbon")
	if f.HasModel() {
		t.Errorf("expected no model for ThinkPad X1, got %q %q", f.ModelSeries, f.ModelNumber)
	}
}

func TestExtractScreenSize(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"explicit inch marker", "Dell XPS 15.6 inch", "15.6"},
		{"quote marker", `Asus ROG 17" Gaming`, "17"},
		{"bare two-digit in range", "HP Envy 13 Gaming", "13"},
		{"bare two-digit out of range", "Lenovo Legion 20 Pro", ""},
		{"inferred from model number", "90W HP Victus 15", "15"},
		{"no size at all", "Apple MacBook Air", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.title).ScreenSize; got != tt.want {
				t.Errorf("Extract(%q).ScreenSize = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractProcessor(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	tests := []struct {
		title string
		want  string
	}{
		{"HP Victus 15 Core i5", "core i5"},
		{"Dell Inspiron Core  i7 16GB", "core i7"},
		{"Lenovo IdeaPad Ryzen 5", "ryzen 5"},
		{"Acer Aspire Intel Celeron", "celeron"},
		{"MacBook Air M2", "m2"},
		{"HP Victus 15", ""},
	}
	for _, tt := range tests {
		if got := e.Extract(tt.title).Processor; got != tt.want {
			t.Errorf("Extract(%q).Processor = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestExtractSpecialFeatures(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	got := e.Extract("HP Pavilion 2-in-1 Touch Gaming Laptop").SpecialFeatures
	want := []string{"2in1", "gaming", "touch"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SpecialFeatures = %v, want %v", got, want)
	}

	// All three 2-in-1 spellings collapse to one canonical tag.
	for _, title := range []string{"HP 2-in-1 Laptop", "HP 2 in 1 Laptop", "HP 2in1 Laptop"} {
		got := e.Extract(title).SpecialFeatures
		if !reflect.DeepEqual(got, []string{"2in1"}) {
			t.Errorf("Extract(%q).SpecialFeatures = %v, want [2in1]", title, got)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	title := "HP Victus 15 Gaming Core i5 Touch"
	first := e.Extract(title)
	for i := 0; i < 10; i++ {
		if got := e.Extract(title); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Extract(%q) = %+v, want %+v", i, title, got, first)
		}
	}
}

func TestFeaturesEmpty(t *testing.T) {
	e := NewFeatureExtractor(DefaultVocabulary())

	if !e.Extract("generic product").Empty() {
		t.Error("expected no features for a generic title")
	}
	if e.Extract("HP Victus 15").Empty() {
		t.Error("expected features for a branded title")
	}
}
