package reports

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

// Handler handles report HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account_id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// HandleBankroll handles GET /bankroll - bankroll summary.
// Query params: account_id (required), from, to, status.
func (h *Handler) HandleBankroll(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	var statusFilter domain.TradeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseTradeStatus(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		statusFilter = status
	}

	summary, err := h.service.Bankroll(accountID,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"), statusFilter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build bankroll summary")
		http.Error(w, "Failed to build bankroll summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleTradeStats handles GET /summary - trade outcome statistics
func (h *Handler) HandleTradeStats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.TradeStats(accountID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build trade summary")
		http.Error(w, "Failed to build trade summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleChart handles GET /chart - monthly premium income
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	points, err := h.service.PremiumChart(accountID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build premium chart")
		http.Error(w, "Failed to build premium chart", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []ChartPoint{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
