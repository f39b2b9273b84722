package commissions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles commission-rate HTTP requests. Every mutation triggers
// the recalculation cascade and reports how many trades it refreshed.
type Handler struct {
	repo    *Repository
	cascade *Cascade
	log     zerolog.Logger
}

// NewHandler creates a new commissions handler
func NewHandler(repo *Repository, cascade *Cascade, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		cascade: cascade,
		log:     log.With().Str("handler", "commissions").Logger(),
	}
}

// HandleList handles GET / - list an account's rates, newest first
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account_id", http.StatusBadRequest)
		return
	}

	rates, err := h.repo.ListByAccount(accountID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list commission rates")
		http.Error(w, "Failed to retrieve commission rates", http.StatusInternalServerError)
		return
	}
	if rates == nil {
		rates = []CommissionRate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rates)
}

// HandleCreate handles POST / - add a rate and cascade from its effective date
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var rate CommissionRate
	if err := json.NewDecoder(r.Body).Decode(&rate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.repo.Create(&rate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.cascade.Recalculate(rate.AccountID, rate.EffectiveDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Cascade failed after rate create")
		http.Error(w, "Rate created but recalculation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        true,
		"rate_id":        id,
		"trades_updated": updated,
	})
}

// HandleUpdate handles PUT /{id} - edit a rate. The cascade starts from the
// earlier of the old and new effective dates so trades that fall out of the
// rate's window are refreshed too.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid rate id", http.StatusBadRequest)
		return
	}

	existing, err := h.repo.Get(id)
	if err != nil {
		http.Error(w, "Failed to retrieve commission rate", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Commission rate not found", http.StatusNotFound)
		return
	}

	var rate CommissionRate
	if err := json.NewDecoder(r.Body).Decode(&rate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rate.ID = id
	rate.AccountID = existing.AccountID

	if err := h.repo.Update(&rate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	from := rate.EffectiveDate
	if existing.EffectiveDate < from {
		from = existing.EffectiveDate
	}
	updated, err := h.cascade.Recalculate(rate.AccountID, from)
	if err != nil {
		h.log.Error().Err(err).Msg("Cascade failed after rate update")
		http.Error(w, "Rate updated but recalculation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        true,
		"trades_updated": updated,
	})
}

// HandleDelete handles DELETE /{id} - remove a rate and cascade from its
// effective date.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid rate id", http.StatusBadRequest)
		return
	}

	existing, err := h.repo.Get(id)
	if err != nil {
		http.Error(w, "Failed to retrieve commission rate", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Commission rate not found", http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, err := h.cascade.Recalculate(existing.AccountID, existing.EffectiveDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Cascade failed after rate delete")
		http.Error(w, "Rate deleted but recalculation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        true,
		"trades_updated": updated,
	})
}
