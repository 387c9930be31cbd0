package main

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrProductNotFound marks a comparison request for an unknown product ID.
var ErrProductNotFound = errors.New("product not found")

// ComparisonStore is the persistence surface the comparison service needs.
// *PostgresStore satisfies it; tests substitute an in-memory fake.
type ComparisonStore interface {
	ProductByID(id string) (*Product, error)
	ActiveProducts(seller string) ([]Product, error)
	SaveComparison(result ComparisonResult) error
	ComparisonsForSeller(seller string) ([]ComparisonResult, error)
}

// ComparisonService runs the matching pipeline end to end: find the best
// competitor listing per source, persist the result, and aggregate pricing
// insights over the stored comparisons.
type ComparisonService struct {
	store   ComparisonStore
	matcher *MatchFinder
	cache   *TTLCache
	cfg     *Config
	now     func() time.Time
}

// NewComparisonService wires the service over its store, matcher and cache.
func NewComparisonService(store ComparisonStore, matcher *MatchFinder, cache *TTLCache, cfg *Config) *ComparisonService {
	return &ComparisonService{
		store:   store,
		matcher: matcher,
		cache:   cache,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CompareProduct recomputes and persists the comparison for one product.
// Products outside the matchable categories return (nil, nil): they do not
// participate, and that is not an error. Persistence failures surface to the
// caller rather than leaving a silently stale record.
func (s *ComparisonService) CompareProduct(productID string) (*ComparisonResult, error) {
	product, err := s.store.ProductByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("compare: product %s: %w", productID, ErrProductNotFound)
	}
	return s.compare(*product)
}

func (s *ComparisonService) compare(product Product) (*ComparisonResult, error) {
	matches, err := s.matcher.FindBestMatches(product)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		return nil, nil
	}

	result := &ComparisonResult{
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
	}

	comparedAt := s.now()
	for _, source := range s.cfg.Sources {
		match := matches[source]
		sc := SourceComparison{
			Source:         source,
			Confidence:     match.Confidence,
			LastComparedAt: comparedAt,
		}
		if match.Listing != nil {
			diff := product.Price - match.Listing.Price
			sc.Matched = true
			sc.MatchedListingID = match.Listing.ID
			sc.MatchedTitle = match.Listing.Title
			sc.MatchedPrice = match.Listing.Price
			sc.PriceDifference = &diff
		}
		result.Sources = append(result.Sources, sc)
	}

	if err := s.store.SaveComparison(*result); err != nil {
		return nil, fmt.Errorf("compare: persist %s: %w", product.ID, err)
	}
	s.cache.Invalidate(insightsCacheKey(product.Seller))
	return result, nil
}

// CompareAll recomputes every active product of a seller (or all sellers when
// seller is empty). Individual product failures abort the run; a partial
// recomputation with silently skipped products would misreport insights.
func (s *ComparisonService) CompareAll(seller string) (int, error) {
	products, err := s.store.ActiveProducts(seller)
	if err != nil {
		return 0, err
	}

	compared := 0
	for i, p := range products {
		result, err := s.compare(p)
		if err != nil {
			return compared, fmt.Errorf("compare all: product %s: %w", p.ID, err)
		}
		if result != nil {
			compared++
		}
		if (i+1)%100 == 0 {
			log.Printf("[compare] progress: %d/%d products", i+1, len(products))
		}
	}
	log.Printf("[compare] done: %d/%d products compared", compared, len(products))
	return compared, nil
}

// OnProductUpdated is the lifecycle hook callers invoke after a product's
// price or title changes. It recomputes that product's comparison in place.
func (s *ComparisonService) OnProductUpdated(productID string) {
	if _, err := s.CompareProduct(productID); err != nil {
		log.Printf("[compare] product update hook for %s: %v", productID, err)
	}
}

// Comparisons returns the stored comparison results for a seller.
func (s *ComparisonService) Comparisons(seller string) ([]ComparisonResult, error) {
	return s.store.ComparisonsForSeller(seller)
}

// PriceInsights buckets a seller's compared products against the cheapest
// matched competitor price. A product is overpriced when it sits at least the
// competitive band above that price, underpriced when at least the band
// below, competitive in between, and unmatched when no source matched at all.
func (s *ComparisonService) PriceInsights(seller string) (PricingInsights, error) {
	key := insightsCacheKey(seller)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(PricingInsights), nil
	}

	results, err := s.store.ComparisonsForSeller(seller)
	if err != nil {
		return PricingInsights{}, err
	}

	insights := PricingInsights{TotalProducts: len(results)}
	for _, r := range results {
		competitorPrice, matched := r.BestCompetitorPrice()
		if !matched {
			insights.UnmatchedCount++
			continue
		}
		diff := r.Price - competitorPrice
		switch {
		case diff >= s.cfg.CompetitiveBand:
			insights.OverpricedCount++
		case diff <= -s.cfg.CompetitiveBand:
			insights.UnderpricedCount++
		default:
			insights.CompetitiveCount++
		}
	}
	if insights.TotalProducts > 0 {
		insights.CompetitivePercentage = float64(insights.CompetitiveCount) / float64(insights.TotalProducts) * 100
	}

	s.cache.Set(key, insights)
	return insights, nil
}

// InvalidateInsights drops every cached insights aggregate. Snapshot feed
// ingestion calls this: stored comparisons may now reference deactivated
// listings, so cached aggregates of any seller should not outlive the feed.
func (s *ComparisonService) InvalidateInsights() {
	s.cache.InvalidateAll()
}

func insightsCacheKey(seller string) string {
	return "insights:" + seller
}
