package cost_basis

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handler handles cost-basis HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new cost-basis handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "cost_basis").Logger(),
	}
}

// HandleSummaries handles GET / - per (account, ticker) ledger summaries.
// Optional query params: account_id, ticker.
func (h *Handler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid account_id", http.StatusBadRequest)
			return
		}
		accountID = parsed
	}
	symbol := r.URL.Query().Get("ticker")

	summaries, err := h.service.Summaries(accountID, symbol)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build cost basis summaries")
		http.Error(w, "Failed to retrieve cost basis", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}
