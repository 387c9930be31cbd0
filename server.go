package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// catalogStore is the persistence surface the HTTP handlers need.
// *PostgresStore satisfies it; tests substitute an in-memory fake.
type catalogStore interface {
	SearchListings(query, source string, limit int) ([]SourceListing, error)
	UpsertListings(batch []ListingInput) (int, error)
	MarkStaleListings(source string, cutoff time.Time) (int64, error)
	SaveProduct(p Product) error
}

// apiServer exposes the comparison pipeline over JSON HTTP.
type apiServer struct {
	store   catalogStore
	service *ComparisonService
	search  *SearchIndex
	cfg     *Config
}

func newAPIServer(store catalogStore, service *ComparisonService, search *SearchIndex, cfg *Config) *apiServer {
	return &apiServer{store: store, service: service, search: search, cfg: cfg}
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/comparisons", s.handleComparisons)
	mux.HandleFunc("POST /api/compare/{productID}", s.handleCompareProduct)
	mux.HandleFunc("POST /api/compare-all", s.handleCompareAll)
	mux.HandleFunc("POST /api/listings", s.handleIngestListings)
	mux.HandleFunc("POST /api/products", s.handleUpsertProduct)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return h2c.NewHandler(corsHandler.Handler(mux), &http2.Server{})
}

// serve starts the HTTP server and blocks.
func (s *apiServer) serve() error {
	log.Printf("API server listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.routes())
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch answers typo-tolerant queries from the Meilisearch index when
// one is configured, falling back to SQL substring search otherwise.
func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	source := r.URL.Query().Get("source")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	if s.search != nil {
		hits, err := s.search.Search(query, source, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"hits": hits, "count": len(hits)})
		return
	}

	listings, err := s.store.SearchListings(query, source, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hits := make([]SearchHit, 0, len(listings))
	for _, l := range listings {
		hits = append(hits, SearchHit{ID: l.ID, Title: l.Title, Price: int(l.Price * 100.0), Source: l.Source})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hits": hits, "count": len(hits)})
}

func (s *apiServer) handleInsights(w http.ResponseWriter, r *http.Request) {
	seller := r.URL.Query().Get("seller")
	if seller == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter seller")
		return
	}
	insights, err := s.service.PriceInsights(seller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *apiServer) handleComparisons(w http.ResponseWriter, r *http.Request) {
	seller := r.URL.Query().Get("seller")
	if seller == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter seller")
		return
	}
	results, err := s.service.Comparisons(seller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}

func (s *apiServer) handleCompareProduct(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")
	result, err := s.service.CompareProduct(productID)
	if errors.Is(err, ErrProductNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "skipped",
			"message": "product category does not participate in comparison",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleCompareAll(w http.ResponseWriter, r *http.Request) {
	seller := r.URL.Query().Get("seller")
	compared, err := s.service.CompareAll(seller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "completed", "compared_count": compared})
}

type ingestRequest struct {
	Source   string `json:"source"`
	Snapshot bool   `json:"snapshot"`
	Listings []struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"listings"`
}

// handleIngestListings accepts a feed batch for one source. A snapshot batch
// additionally deactivates listings of that source not present in it.
func (s *apiServer) handleIngestListings(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "missing source")
		return
	}

	start := time.Now()
	batch := make([]ListingInput, 0, len(req.Listings))
	for _, l := range req.Listings {
		if l.Title == "" || l.Price <= 0 {
			continue
		}
		batch = append(batch, ListingInput{Title: l.Title, Price: l.Price, Source: req.Source})
	}

	ingested, err := s.store.UpsertListings(batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var deactivated int64
	if req.Snapshot {
		deactivated, err = s.store.MarkStaleListings(req.Source, start)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.service.InvalidateInsights()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "completed",
		"ingested":    ingested,
		"skipped":     len(req.Listings) - len(batch),
		"deactivated": deactivated,
	})
}

type productRequest struct {
	ID       string  `json:"id"`
	Seller   string  `json:"seller"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	IsActive *bool   `json:"is_active"`
}

// handleUpsertProduct creates or updates a seller product and recomputes its
// comparison through the product-updated hook.
func (s *apiServer) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Seller == "" || req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "seller, name and category are required")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	p := Product{
		ID:       req.ID,
		Seller:   req.Seller,
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		IsActive: true,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.store.SaveProduct(p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.service.OnProductUpdated(p.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "saved", "id": p.ID})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
