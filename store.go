package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore persists products, competitor listings and comparison results.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the database to come up and
// runs schema migrations.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id         UUID PRIMARY KEY,
			seller     TEXT          NOT NULL,
			name       TEXT          NOT NULL,
			price      NUMERIC(12,2) NOT NULL,
			category   TEXT          NOT NULL,
			is_active  BOOLEAN       NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS competitor_listings (
			id           UUID PRIMARY KEY,
			title        TEXT          NOT NULL,
			price        NUMERIC(12,2) NOT NULL,
			source       TEXT          NOT NULL,
			is_active    BOOLEAN       NOT NULL DEFAULT TRUE,
			first_seen_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (title, source)
		);

		CREATE TABLE IF NOT EXISTS comparison_results (
			product_id         UUID        NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			source             TEXT        NOT NULL,
			matched_listing_id UUID        NULL REFERENCES competitor_listings(id) ON DELETE SET NULL,
			confidence         DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_difference   NUMERIC(12,2) NULL,
			last_compared_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (product_id, source)
		);

		CREATE INDEX IF NOT EXISTS idx_products_seller     ON products(seller);
		CREATE INDEX IF NOT EXISTS idx_listings_source     ON competitor_listings(source);
		CREATE INDEX IF NOT EXISTS idx_listings_active     ON competitor_listings(source, is_active);
		CREATE INDEX IF NOT EXISTS idx_comparisons_product ON comparison_results(product_id);
	`)
	return err
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ListingInput is one scraped record handed over by the external feed.
// Prices arrive validated; the store does not re-parse them.
type ListingInput struct {
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// UpsertListings ingests a feed batch. (Title, source) is unique per source:
// an existing row gets its price and last_seen_at refreshed in place.
func (s *PostgresStore) UpsertListings(batch []ListingInput) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO competitor_listings (id, title, price, source, is_active, last_seen_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (title, source) DO UPDATE SET
			price        = EXCLUDED.price,
			is_active    = TRUE,
			last_seen_at = NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("postgres: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, l := range batch {
		if _, err := stmt.Exec(uuid.NewString(), l.Title, l.Price, l.Source); err != nil {
			return 0, fmt.Errorf("postgres: upsert listing %q: %w", l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return len(batch), nil
}

// MarkStaleListings deactivates listings of one source not seen since the
// cutoff, so dropped competitor pages stop participating in matching.
func (s *PostgresStore) MarkStaleListings(source string, cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE competitor_listings
		SET is_active = FALSE
		WHERE source = $1 AND last_seen_at < $2 AND is_active
	`, source, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: mark stale: %w", err)
	}
	return res.RowsAffected()
}

// ActiveListings returns the active listings of one source in first-seen
// order, which keeps tie-breaking during matching deterministic.
func (s *PostgresStore) ActiveListings(source string) ([]SourceListing, error) {
	rows, err := s.db.Query(`
		SELECT id, title, price, source, is_active, last_seen_at
		FROM competitor_listings
		WHERE source = $1 AND is_active
		ORDER BY first_seen_at, id
	`, source)
	if err != nil {
		return nil, fmt.Errorf("postgres: active listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// SearchListings is the manual lookup contract: substring containment with an
// optional source filter, newest first.
func (s *PostgresStore) SearchListings(query, source string, limit int) ([]SourceListing, error) {
	args := []interface{}{"%" + query + "%", limit}
	q := `
		SELECT id, title, price, source, is_active, last_seen_at
		FROM competitor_listings
		WHERE is_active AND title ILIKE $1
	`
	if source != "" {
		q += ` AND source = $3`
		args = append(args, source)
	}
	q += ` ORDER BY last_seen_at DESC LIMIT $2`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: search listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// ListingsPage fetches one page of all listings for index rebuilds.
func (s *PostgresStore) ListingsPage(limit, offset int) ([]SourceListing, error) {
	rows, err := s.db.Query(`
		SELECT id, title, price, source, is_active, last_seen_at
		FROM competitor_listings
		ORDER BY first_seen_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listings page: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

func scanListings(rows *sql.Rows) ([]SourceListing, error) {
	var listings []SourceListing
	for rows.Next() {
		var l SourceListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Price, &l.Source, &l.IsActive, &l.LastSeenAt); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// SaveProduct upserts a seller product.
func (s *PostgresStore) SaveProduct(p Product) error {
	_, err := s.db.Exec(`
		INSERT INTO products (id, seller, name, price, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			seller    = EXCLUDED.seller,
			name      = EXCLUDED.name,
			price     = EXCLUDED.price,
			category  = EXCLUDED.category,
			is_active = EXCLUDED.is_active
	`, p.ID, p.Seller, p.Name, p.Price, p.Category, p.IsActive)
	if err != nil {
		return fmt.Errorf("postgres: save product: %w", err)
	}
	return nil
}

// ProductByID fetches a single product.
func (s *PostgresStore) ProductByID(id string) (*Product, error) {
	p := &Product{}
	err := s.db.QueryRow(`
		SELECT id, seller, name, price, category, is_active, created_at
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Seller, &p.Name, &p.Price, &p.Category, &p.IsActive, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: product by id: %w", err)
	}
	return p, nil
}

// ActiveProducts returns the active products, optionally filtered by seller.
func (s *PostgresStore) ActiveProducts(seller string) ([]Product, error) {
	args := []interface{}{}
	q := `
		SELECT id, seller, name, price, category, is_active, created_at
		FROM products
		WHERE is_active
	`
	if seller != "" {
		q += ` AND seller = $1`
		args = append(args, seller)
	}
	q += ` ORDER BY created_at, id`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: active products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Seller, &p.Name, &p.Price, &p.Category, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SaveComparison overwrites the stored result for one product in place. Each
// configured source gets exactly one row; there is no retained history.
func (s *PostgresStore) SaveComparison(result ComparisonResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO comparison_results
			(product_id, source, matched_listing_id, confidence, price_difference, last_compared_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		ON CONFLICT (product_id, source) DO UPDATE SET
			matched_listing_id = EXCLUDED.matched_listing_id,
			confidence         = EXCLUDED.confidence,
			price_difference   = EXCLUDED.price_difference,
			last_compared_at   = EXCLUDED.last_compared_at
	`)
	if err != nil {
		return fmt.Errorf("postgres: prepare comparison upsert: %w", err)
	}
	defer stmt.Close()

	for _, sc := range result.Sources {
		var diff sql.NullFloat64
		if sc.PriceDifference != nil {
			diff = sql.NullFloat64{Float64: *sc.PriceDifference, Valid: true}
		}
		if _, err := stmt.Exec(result.ProductID, sc.Source, sc.MatchedListingID,
			sc.Confidence, diff, sc.LastComparedAt); err != nil {
			return fmt.Errorf("postgres: upsert comparison (%s/%s): %w", result.ProductID, sc.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// ComparisonsForSeller loads the current comparison results of a seller's
// active products, joined with the matched listing details.
func (s *PostgresStore) ComparisonsForSeller(seller string) ([]ComparisonResult, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.price,
		       c.source, COALESCE(c.matched_listing_id::text, ''), c.confidence,
		       c.price_difference, c.last_compared_at,
		       COALESCE(l.title, ''), COALESCE(l.price, 0)
		FROM comparison_results c
		JOIN products p ON p.id = c.product_id
		LEFT JOIN competitor_listings l ON l.id = c.matched_listing_id
		WHERE p.seller = $1 AND p.is_active
		ORDER BY p.created_at, p.id, c.source
	`, seller)
	if err != nil {
		return nil, fmt.Errorf("postgres: comparisons for seller: %w", err)
	}
	defer rows.Close()

	var results []ComparisonResult
	var current *ComparisonResult
	for rows.Next() {
		var (
			productID, productName string
			productPrice           float64
			sc                     SourceComparison
			diff                   sql.NullFloat64
		)
		if err := rows.Scan(&productID, &productName, &productPrice,
			&sc.Source, &sc.MatchedListingID, &sc.Confidence,
			&diff, &sc.LastComparedAt, &sc.MatchedTitle, &sc.MatchedPrice); err != nil {
			return nil, fmt.Errorf("postgres: scan comparison: %w", err)
		}
		sc.Matched = sc.MatchedListingID != ""
		if diff.Valid {
			d := diff.Float64
			sc.PriceDifference = &d
		}

		if current == nil || current.ProductID != productID {
			results = append(results, ComparisonResult{
				ProductID:   productID,
				ProductName: productName,
				Price:       productPrice,
			})
			current = &results[len(results)-1]
		}
		current.Sources = append(current.Sources, sc)
	}
	return results, rows.Err()
}
