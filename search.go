package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	meilisearch "github.com/meilisearch/meilisearch-go"
)

const listingsIndexName = "listings"

// SearchIndex wraps the Meilisearch index of competitor listings. It backs
// the typo-tolerant search endpoint; exact substring lookup stays on SQL.
type SearchIndex struct {
	client meilisearch.ServiceManager
}

// SearchHit is one result row returned to API clients. Price is indexed in
// minor units to keep range filters integer-exact.
type SearchHit struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Price  int    `json:"price"`
	Source string `json:"source"`
}

// NewSearchIndex connects to Meilisearch. Returns nil when no URL is
// configured; the rest of the pipeline works without the index.
func NewSearchIndex(cfg *Config) *SearchIndex {
	if cfg.MeiliURL == "" {
		return nil
	}
	return &SearchIndex{
		client: meilisearch.New(cfg.MeiliURL, meilisearch.WithAPIKey(cfg.MeiliAPIKey)),
	}
}

// RebuildListings drops and re-creates the listings index from Postgres,
// paging through the table in batches.
func (s *SearchIndex) RebuildListings(store *PostgresStore) (int, error) {
	_, _ = s.client.DeleteIndex(listingsIndexName)
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{Uid: listingsIndexName, PrimaryKey: "id"}); err != nil {
		return 0, fmt.Errorf("search: create index: %w", err)
	}
	index := s.client.Index(listingsIndexName)

	if err := s.configureIndex(index); err != nil {
		return 0, err
	}

	const batchSize = 500
	indexed := 0
	for offset := 0; ; offset += batchSize {
		listings, err := store.ListingsPage(batchSize, offset)
		if err != nil {
			return indexed, err
		}
		if len(listings) == 0 {
			break
		}

		docs := make([]map[string]interface{}, 0, len(listings))
		for _, l := range listings {
			docs = append(docs, map[string]interface{}{
				"id":     l.ID,
				"title":  l.Title,
				"price":  int(l.Price * 100.0),
				"source": l.Source,
				"active": l.IsActive,
			})
		}
		if _, err := index.AddDocuments(docs, nil); err != nil {
			return indexed, fmt.Errorf("search: add documents: %w", err)
		}
		indexed += len(docs)
		log.Printf("[search] indexed %d listings", indexed)
	}
	return indexed, nil
}

func (s *SearchIndex) configureIndex(index meilisearch.IndexManager) error {
	searchable := []string{"title"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		return fmt.Errorf("search: update searchable attributes: %w", err)
	}

	filterable := []interface{}{"source", "active", "price"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		return fmt.Errorf("search: update filterable attributes: %w", err)
	}

	sortable := []string{"price", "title"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		return fmt.Errorf("search: update sortable attributes: %w", err)
	}
	return nil
}

// Search runs a typo-tolerant query over active listings, optionally
// restricted to one source.
func (s *SearchIndex) Search(query, source string, limit int) ([]SearchHit, error) {
	index := s.client.Index(listingsIndexName)

	req := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	parts := []string{"active = true"}
	if source != "" {
		parts = append(parts, `source = "`+strings.ReplaceAll(source, `"`, `\"`)+`"`)
	}
	req.Filter = strings.Join(parts, " AND ")

	res, err := index.Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("search: query %q: %w", query, err)
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	b, _ := json.Marshal(res.Hits)
	_ = json.Unmarshal(b, &hits)
	return hits, nil
}
