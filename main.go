package main

import (
	"fmt"
	"log"
	"os"
	"time"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "compare-all":
			runCompareAll()
			return
		case "rebuild-index":
			runRebuildIndex()
			return
		case "test-match":
			runTestMatch()
			return
		case "help":
			fmt.Println("Usage: priceradar [command]")
			fmt.Println("")
			fmt.Println("Commands:")
			fmt.Println("  (no args)      Start the HTTP API server")
			fmt.Println("  compare-all    Recompute comparisons for all active products: priceradar compare-all [seller]")
			fmt.Println("  rebuild-index  Rebuild the Meilisearch listings index from Postgres")
			fmt.Println("  test-match     Score a title against all sources: priceradar test-match \"product title\"")
			fmt.Println("  help           Show this help message")
			return
		}
	}
	runServer()
}

// loadVocabulary picks the configured vocabulary file, or the built-in tables.
func loadVocabulary(cfg *Config) *Vocabulary {
	if cfg.VocabularyFile == "" {
		return DefaultVocabulary()
	}
	vocab, err := LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}
	log.Printf("Loaded vocabulary from %s", cfg.VocabularyFile)
	return vocab
}

func runServer() {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	log.Println("Database connected successfully")

	search := NewSearchIndex(cfg)
	if search == nil {
		log.Println("Meilisearch not configured, search falls back to SQL")
	}

	cache := NewTTLCache(time.Duration(cfg.InsightsCacheTTLSeconds) * time.Second)
	matcher := NewMatchFinder(NewSimilarityScorer(loadVocabulary(cfg)), store, cfg)
	service := NewComparisonService(store, matcher, cache, cfg)

	srv := newAPIServer(store, service, search, cfg)
	if err := srv.serve(); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}

func runCompareAll() {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	seller := ""
	if len(os.Args) > 2 {
		seller = os.Args[2]
	}

	cache := NewTTLCache(time.Duration(cfg.InsightsCacheTTLSeconds) * time.Second)
	matcher := NewMatchFinder(NewSimilarityScorer(loadVocabulary(cfg)), store, cfg)
	service := NewComparisonService(store, matcher, cache, cfg)

	start := time.Now()
	compared, err := service.CompareAll(seller)
	if err != nil {
		log.Fatalf("Compare-all failed: %v", err)
	}
	fmt.Printf("Compared %d products in %s\n", compared, time.Since(start).Round(time.Millisecond))
}

func runRebuildIndex() {
	cfg := LoadConfig()

	search := NewSearchIndex(cfg)
	if search == nil {
		log.Fatal("MEILI_URL not configured, nothing to rebuild")
	}

	store, err := NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	indexed, err := search.RebuildListings(store)
	if err != nil {
		log.Fatalf("Rebuild failed: %v", err)
	}
	fmt.Printf("Index rebuild complete: %d listings indexed\n", indexed)
}

// runTestMatch scores an ad-hoc title against every configured source without
// persisting anything. Useful for tuning vocabularies and the confidence floor.
func runTestMatch() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: priceradar test-match \"product title\"")
	}
	title := os.Args[2]

	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	scorer := NewSimilarityScorer(loadVocabulary(cfg))
	prepared := scorer.Prepare(title)

	fmt.Printf("Title:      %s\n", title)
	fmt.Printf("Normalized: %s\n", prepared.Normalized)
	f := prepared.Features
	fmt.Printf("Features:   brand=%q series=%q number=%q screen=%q cpu=%q special=%v\n\n",
		f.Brand, f.ModelSeries, f.ModelNumber, f.ScreenSize, f.Processor, f.SpecialFeatures)

	for _, source := range cfg.Sources {
		listings, err := store.ActiveListings(source)
		if err != nil {
			log.Fatalf("Failed to load listings for %s: %v", source, err)
		}

		best := Match{}
		for i := range listings {
			score := scorer.ScorePrepared(prepared, scorer.Prepare(listings[i].Title))
			if score > best.Confidence {
				best.Confidence = score
				best.Listing = &listings[i]
			}
		}

		if best.Listing == nil {
			fmt.Printf("%-10s | no candidates\n", source)
			continue
		}
		verdict := "below floor"
		if best.Confidence >= cfg.MinConfidence {
			verdict = "MATCH"
		}
		fmt.Printf("%-10s | %.3f | %-10s | %s\n", source, best.Confidence, verdict, best.Listing.Title)
	}
}
