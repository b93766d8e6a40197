package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
)

type CategoryDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	categories, err := h.store.FetchAll(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryToDTO(c))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating new category")

	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	created, err := h.store.Add(r.Context(), dtoToCategory(dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(categoryToDTO(created)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	updated, err := h.store.Update(r.Context(), id, dtoToCategory(dto))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(categoryToDTO(updated)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func categoryToDTO(c Category) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		CreatedAt: c.CreatedAt,
	}
}

func dtoToCategory(dto CategoryDTO) Category {
	return Category{
		ID:   dto.ID,
		Name: dto.Name,
		Kind: Kind(dto.Kind),
	}
}
