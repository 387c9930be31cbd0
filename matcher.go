package main

import "fmt"

// ListingProvider supplies the active competitor listings for one source, in
// stable first-seen order. Matching requires deterministic iteration so that
// score ties always resolve to the earliest-seen candidate.
type ListingProvider interface {
	ActiveListings(source string) ([]SourceListing, error)
}

// MatchFinder selects, per configured source, the single best-scoring active
// listing above the confidence floor for a seller product.
type MatchFinder struct {
	scorer   *SimilarityScorer
	listings ListingProvider
	cfg      *Config
}

// NewMatchFinder wires a match finder over the given scorer and listing provider.
func NewMatchFinder(scorer *SimilarityScorer, listings ListingProvider, cfg *Config) *MatchFinder {
	return &MatchFinder{
		scorer:   scorer,
		listings: listings,
		cfg:      cfg,
	}
}

// FindBestMatches returns one Match per configured source. Products outside
// the matchable categories return a nil map: explicit non-participation, not
// a zero-score match. An empty feed for a source yields a no-match entry,
// never an error.
func (m *MatchFinder) FindBestMatches(product Product) (map[string]Match, error) {
	if !m.cfg.IsMatchable(product.Category) {
		return nil, nil
	}

	prepared := m.scorer.Prepare(product.Name)

	results := make(map[string]Match, len(m.cfg.Sources))
	for _, source := range m.cfg.Sources {
		match, err := m.bestForSource(prepared, source)
		if err != nil {
			return nil, fmt.Errorf("match %q against %s: %w", product.Name, source, err)
		}
		results[source] = match
	}
	return results, nil
}

// bestForSource scans all active listings of one source and keeps the
// candidate strictly greater than the running best. Candidates below the
// confidence floor are discarded outright: the result is "no match", not
// "best available".
func (m *MatchFinder) bestForSource(prepared PreparedTitle, source string) (Match, error) {
	candidates, err := m.listings.ActiveListings(source)
	if err != nil {
		return Match{}, err
	}

	best := Match{}
	for i := range candidates {
		score := m.scorer.ScorePrepared(prepared, m.scorer.Prepare(candidates[i].Title))
		if score >= m.cfg.MinConfidence && score > best.Confidence {
			best.Confidence = score
			best.Listing = &candidates[i]
		}
	}
	return best, nil
}
