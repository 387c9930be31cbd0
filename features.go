package main

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Features holds the structured attributes extracted from a listing title.
// Any field may be absent; absent fields contribute zero weight downstream.
type Features struct {
	Brand           string
	ModelSeries     string
	ModelNumber     string
	ScreenSize      string
	Processor       string
	SpecialFeatures []string // sorted canonical tags
}

// HasModel reports whether a full series+number model was found.
func (f Features) HasModel() bool {
	return f.ModelSeries != "" && f.ModelNumber != ""
}

// Empty reports whether nothing at all was extracted.
func (f Features) Empty() bool {
	return f.Brand == "" && !f.HasModel() && f.ScreenSize == "" &&
		f.Processor == "" && len(f.SpecialFeatures) == 0
}

// FeatureExtractor pulls structured attributes out of titles using the closed
// vocabulary tables. Titles using unlisted brands or model lines degrade to
// weaker string scoring instead of failing.
type FeatureExtractor struct {
	brands      []BrandEntry
	featureTags []FeatureTag

	modelPattern     *regexp.Regexp
	screenPattern    *regexp.Regexp
	modelSizePattern *regexp.Regexp
	processorPattern *regexp.Regexp
	whitespace       *regexp.Regexp
}

// NewFeatureExtractor compiles the extraction patterns from the vocabulary.
func NewFeatureExtractor(vocab *Vocabulary) *FeatureExtractor {
	quoted := make([]string, len(vocab.Series))
	for i, s := range vocab.Series {
		quoted[i] = regexp.QuoteMeta(s)
	}

	return &FeatureExtractor{
		brands:       vocab.Brands,
		featureTags:  vocab.FeatureTags,
		modelPattern: regexp.MustCompile(`(` + strings.Join(quoted, "|") + `)\s*(\d+)`),
		// Screen size: an inch-marked token wins; a bare two-digit number is
		// accepted only if it falls in the plausible 13–17 laptop range.
		// The bare-number branch is a known heuristic and can pick up the
		// model number's digits ("victus 15" reads as 15").
		screenPattern:    regexp.MustCompile(`(\d+\.?\d*)\s*inch|\b(\d+)\s*"|\b(\d+)\s*in\b|(\d{2})(?:[^\d]|$)`),
		modelSizePattern: regexp.MustCompile(`\s(1[3-7])(?:\s|$)`),
		processorPattern: regexp.MustCompile(`(core\s*i\d+|ryzen\s*\d+|celeron|pentium|m\d+)`),
		whitespace:       regexp.MustCompile(`\s+`),
	}
}

// Extract returns the structured attributes found in the title. Each rule is
// independent; a miss on one never blocks the others.
func (e *FeatureExtractor) Extract(title string) Features {
	t := strings.ToLower(title)
	f := Features{}

	// Brand: first vocabulary hit wins, no full ambiguity scan.
	for _, b := range e.brands {
		if strings.Contains(t, b.Token) {
			f.Brand = b.Canonical
			break
		}
	}

	// Model series + number, first match only.
	if m := e.modelPattern.FindStringSubmatch(t); m != nil {
		f.ModelSeries = m[1]
		f.ModelNumber = m[2]
	}

	f.ScreenSize = e.extractScreenSize(t, f)

	if m := e.processorPattern.FindStringSubmatch(t); m != nil {
		f.Processor = e.whitespace.ReplaceAllString(m[1], " ")
	}

	for _, tag := range e.featureTags {
		if strings.Contains(t, tag.Token) {
			f.SpecialFeatures = appendUnique(f.SpecialFeatures, tag.Canonical)
		}
	}
	sort.Strings(f.SpecialFeatures)

	return f
}

// extractScreenSize finds a plausible screen size. An explicit inch/quote
// marker is checked first; otherwise any two-digit number in the 13–17 range
// is taken, and as a last resort the size is inferred from the model number
// ("pavilion 14" implies 14").
func (e *FeatureExtractor) extractScreenSize(title string, f Features) string {
	if m := e.screenPattern.FindStringSubmatch(title); m != nil {
		size := m[1]
		for _, g := range m[2:] {
			if size != "" {
				break
			}
			size = g
		}
		if v, err := strconv.ParseFloat(size, 64); err == nil && v >= 13 && v <= 17 {
			return size
		}
	}

	if f.HasModel() {
		model := f.ModelSeries + " " + f.ModelNumber
		if m := e.modelSizePattern.FindStringSubmatch(model); m != nil {
			return m[1]
		}
	}

	return ""
}

func appendUnique(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}
