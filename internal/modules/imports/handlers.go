package imports

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles import HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new imports handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "imports").Logger(),
	}
}

type importRequest struct {
	AccountID int64 `json:"account_id"`
	Rows      []Row `json:"trades"`
}

// HandleImport handles POST / - import a batch of trades
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AccountID <= 0 {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Rows) == 0 {
		http.Error(w, "No trades to import", http.StatusBadRequest)
		return
	}

	result := h.service.ImportBatch(req.AccountID, req.Rows)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
