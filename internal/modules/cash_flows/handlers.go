package cash_flows

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

// Handler handles cash flow HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new cash flow handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "cash_flows").Logger(),
	}
}

// HandleList handles GET / - list an account's cash flows.
// Query params: account_id (required), from, to, type.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account_id", http.StatusBadRequest)
		return
	}

	filter := Filter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind, err := domain.ParseCashFlowKind(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Kind = kind
	}

	flows, err := h.repo.ListByAccount(accountID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list cash flows")
		http.Error(w, "Failed to retrieve cash flows", http.StatusInternalServerError)
		return
	}
	if flows == nil {
		flows = []CashFlow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flows)
}

type createRequest struct {
	AccountID int64   `json:"account_id"`
	Date      string  `json:"transaction_date"`
	Type      string  `json:"transaction_type"`
	Amount    float64 `json:"amount"`
	Description string `json:"description"`
}

// HandleCreate handles POST / - record a manual deposit or withdrawal.
// Withdrawal amounts are normalized to negative.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseCashFlowKind(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if kind != domain.FlowDeposit && kind != domain.FlowWithdrawal {
		http.Error(w, "Only DEPOSIT and WITHDRAWAL may be recorded manually", http.StatusBadRequest)
		return
	}
	if _, err := domain.ParseDate(req.Date); err != nil {
		http.Error(w, "Invalid transaction_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	amount := req.Amount
	if kind == domain.FlowWithdrawal && amount > 0 {
		amount = -amount
	}

	id, err := h.repo.Create(&CashFlow{
		AccountID:   req.AccountID,
		Date:        req.Date,
		Kind:        kind,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create cash flow")
		http.Error(w, "Failed to create cash flow", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"cash_flow_id": id,
	})
}

// HandleDelete handles DELETE /{id} - remove a manual deposit or withdrawal
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid cash flow id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(id); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete cash flow")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
