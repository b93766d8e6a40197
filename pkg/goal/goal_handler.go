package goal

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

type GoalDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Progress      float64         `json:"progress"`
	Achieved      bool            `json:"achieved"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type AddFundsDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	goals, err := h.store.FetchAll(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, goalToDTO(g))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating new goal")

	var dto GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	created, err := h.store.Add(r.Context(), dtoToGoal(dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(goalToDTO(created)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	updated, err := h.store.Update(r.Context(), id, dtoToGoal(dto))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(goalToDTO(updated)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// AddFunds handles the add-funds dialog: the error comes back to the
// caller (instead of only landing in the store state) so the dialog can
// stay open on failure.
func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto AddFundsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	updated, err := h.store.AddFunds(r.Context(), id, dto.Amount)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(goalToDTO(updated)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func goalToDTO(g Goal) GoalDTO {
	return GoalDTO{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Progress:      g.Progress(),
		Achieved:      g.Achieved(),
		CreatedAt:     g.CreatedAt,
	}
}

func dtoToGoal(dto GoalDTO) Goal {
	return Goal{
		ID:            dto.ID,
		Name:          dto.Name,
		TargetAmount:  dto.TargetAmount,
		CurrentAmount: dto.CurrentAmount,
	}
}
