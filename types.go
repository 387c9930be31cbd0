package main

import "time"

// Product is a seller's own listing. Only products whose category is in the
// configured matchable set participate in comparison.
type Product struct {
	ID        string
	Seller    string
	Name      string
	Price     float64
	Category  string
	IsActive  bool
	CreatedAt time.Time
}

// SourceListing is a competitor-side catalog entry from one scraped feed.
// (Title, Source) is unique per source: re-ingesting the same title updates
// the price in place instead of duplicating the row.
type SourceListing struct {
	ID         string
	Title      string
	Price      float64
	Source     string
	IsActive   bool
	LastSeenAt time.Time
}

// Match is the best listing found for one product against one source.
// Listing is nil when nothing cleared the confidence floor.
type Match struct {
	Listing    *SourceListing
	Confidence float64
}

// SourceComparison is the persisted per-source slice of a comparison result.
// PriceDifference is owned price minus matched price; nil when unmatched.
type SourceComparison struct {
	Source           string
	MatchedListingID string
	MatchedTitle     string
	MatchedPrice     float64
	Matched          bool
	Confidence       float64
	PriceDifference  *float64
	LastComparedAt   time.Time
}

// ComparisonResult holds the latest comparison for one product across all
// configured sources. It is overwritten on every recomputation; no history
// is retained.
type ComparisonResult struct {
	ProductID   string
	ProductName string
	Price       float64
	Sources     []SourceComparison
}

// BestCompetitorPrice returns the cheapest matched competitor price, favoring
// the seller's strongest competitive pressure when several sources matched.
func (r ComparisonResult) BestCompetitorPrice() (float64, bool) {
	best := 0.0
	found := false
	for _, sc := range r.Sources {
		if !sc.Matched {
			continue
		}
		if !found || sc.MatchedPrice < best {
			best = sc.MatchedPrice
			found = true
		}
	}
	return best, found
}

// PricingInsights buckets a seller's compared products by how their price
// sits against the cheapest matched competitor.
type PricingInsights struct {
	TotalProducts         int     `json:"total_products"`
	CompetitiveCount      int     `json:"competitive_count"`
	OverpricedCount       int     `json:"overpriced_count"`
	UnderpricedCount      int     `json:"underpriced_count"`
	UnmatchedCount        int     `json:"unmatched_count"`
	CompetitivePercentage float64 `json:"competitive_percentage"`
}
