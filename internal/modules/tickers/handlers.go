package tickers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles ticker HTTP requests
type Handler struct {
	repo    *Repository
	service *Service
	client  NameClient
	log     zerolog.Logger
}

// NewHandler creates a new tickers handler
func NewHandler(repo *Repository, service *Service, client NameClient, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		client:  client,
		log:     log.With().Str("handler", "tickers").Logger(),
	}
}

// HandleSearch handles GET /search?q= - company search against the provider
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Match{})
		return
	}

	matches, err := h.client.Search(r.Context(), query)
	if err != nil {
		h.log.Warn().Err(err).Str("query", query).Msg("Company search failed")
		http.Error(w, "Failed to fetch company data", http.StatusBadGateway)
		return
	}
	if len(matches) > 10 {
		matches = matches[:10]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

// HandleCompanyInfo handles GET /{symbol} - cached display name for a symbol
func (h *Handler) HandleCompanyInfo(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	name := h.service.DisplayName(r.Context(), symbol)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Match{Symbol: symbol, Name: name})
}

// HandleTopSymbols handles GET /top - most traded symbols
func (h *Handler) HandleTopSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.repo.TopSymbols(10)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get top symbols")
		http.Error(w, "Failed to retrieve top symbols", http.StatusInternalServerError)
		return
	}
	if symbols == nil {
		symbols = []TopSymbol{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(symbols)
}
