package main

// Similarity scoring weights. Brand and model-family mismatches subtract
// weight rather than contributing zero, so cross-brand lookalikes land well
// under the confidence floor.
const (
	brandWeight        = 0.30
	brandMismatch      = -0.20
	modelWeight        = 0.25
	modelSameSeries    = 0.05
	modelWrongSeries   = -0.15
	screenWeight       = 0.15
	processorWeight    = 0.15
	specialWeight      = 0.15
	featureBlendWeight = 0.70
	tokenBlendWeight   = 0.20
	charBlendWeight    = 0.10

	// Blend used when neither title yields any extractable features.
	fallbackCharWeight  = 0.60
	fallbackTokenWeight = 0.40
)

// PreparedTitle caches the derived forms of one title so a seller product is
// normalized and extracted once, not once per candidate.
type PreparedTitle struct {
	Raw        string
	Normalized string
	Tokens     map[string]struct{}
	Features   Features
}

// SimilarityScorer combines feature agreement, token overlap and raw string
// similarity into a single confidence value.
type SimilarityScorer struct {
	normalizer *TitleNormalizer
	extractor  *FeatureExtractor
}

// NewSimilarityScorer creates a scorer over the given vocabulary.
func NewSimilarityScorer(vocab *Vocabulary) *SimilarityScorer {
	return &SimilarityScorer{
		normalizer: NewTitleNormalizer(vocab),
		extractor:  NewFeatureExtractor(vocab),
	}
}

// Prepare derives the normalized form, token set and features of a title.
func (s *SimilarityScorer) Prepare(title string) PreparedTitle {
	normalized := s.normalizer.Normalize(title)
	return PreparedTitle{
		Raw:        title,
		Normalized: normalized,
		Tokens:     s.normalizer.Tokens(title),
		Features:   s.extractor.Extract(title),
	}
}

// Score compares two raw titles. Deterministic and symmetric in all terms.
func (s *SimilarityScorer) Score(a, b string) float64 {
	return s.ScorePrepared(s.Prepare(a), s.Prepare(b))
}

// ScorePrepared compares two prepared titles. The feature subtotal is
// normalized by the weight actually used, so attributes absent on either side
// neither dilute nor inflate the result. The final value is clamped to 1.0;
// negative scores pass through and simply fail the confidence floor.
func (s *SimilarityScorer) ScorePrepared(a, b PreparedTitle) float64 {
	var featureScore, featureWeight float64

	fa, fb := a.Features, b.Features

	if fa.Brand != "" && fb.Brand != "" {
		featureWeight += brandWeight
		if fa.Brand == fb.Brand {
			featureScore += brandWeight
		} else {
			featureScore += brandMismatch
		}
	}

	if fa.HasModel() && fb.HasModel() {
		featureWeight += modelWeight
		switch {
		case fa.ModelSeries == fb.ModelSeries && fa.ModelNumber == fb.ModelNumber:
			featureScore += modelWeight
		case fa.ModelSeries == fb.ModelSeries:
			// Same family does not imply a good match.
			featureScore += modelSameSeries
		default:
			featureScore += modelWrongSeries
		}
	}

	if fa.ScreenSize != "" && fb.ScreenSize != "" {
		featureWeight += screenWeight
		if fa.ScreenSize == fb.ScreenSize {
			featureScore += screenWeight
		}
	}

	if fa.Processor != "" && fb.Processor != "" {
		featureWeight += processorWeight
		if fa.Processor == fb.Processor {
			featureScore += processorWeight
		}
	}

	if len(fa.SpecialFeatures) > 0 || len(fb.SpecialFeatures) > 0 {
		featureWeight += specialWeight
		featureScore += specialWeight * jaccardSlices(fa.SpecialFeatures, fb.SpecialFeatures)
	}

	tokenOverlap := jaccardSets(a.Tokens, b.Tokens)
	charSimilarity := similarityRatio(a.Normalized, b.Normalized)

	var final float64
	if featureWeight > 0 {
		normalized := featureScore / featureWeight
		final = normalized*featureBlendWeight +
			tokenOverlap*tokenBlendWeight +
			charSimilarity*charBlendWeight
	} else {
		final = charSimilarity*fallbackCharWeight + tokenOverlap*fallbackTokenWeight
	}

	if final > 1.0 {
		final = 1.0
	}
	return final
}

func jaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	common := 0
	for t := range a {
		if _, ok := b[t]; ok {
			common++
		}
	}
	union := len(a) + len(b) - common
	return float64(common) / float64(union)
}

func jaccardSlices(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	common := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			common++
		}
	}
	union := len(a) + len(b) - common
	return float64(common) / float64(union)
}

// similarityRatio is a character-level sequence similarity in [0,1] derived
// from Levenshtein edit distance over the normalized titles.
func similarityRatio(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	// Rune count, matching the distance metric; byte length would inflate
	// the denominator for non-ASCII titles.
	maxLen := len([]rune(s1))
	if n := len([]rune(s2)); n > maxLen {
		maxLen = n
	}

	similarity := 1.0 - float64(distance)/float64(maxLen)
	if similarity < 0 {
		return 0
	}
	return similarity
}

func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
