package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
)

type BudgetDTO struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budgets, err := h.store.FetchAll(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, budgetToDTO(b))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating new budget")

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	created, err := h.store.Add(r.Context(), dtoToBudget(dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budgetToDTO(created)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	updated, err := h.store.Update(r.Context(), id, dtoToBudget(dto))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Budget not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(updated)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Budget not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func budgetToDTO(b Budget) BudgetDTO {
	return BudgetDTO{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Month:      b.Month,
		Year:       b.Year,
		CreatedAt:  b.CreatedAt,
	}
}

func dtoToBudget(dto BudgetDTO) Budget {
	return Budget{
		ID:         dto.ID,
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount,
		Month:      dto.Month,
		Year:       dto.Year,
	}
}
