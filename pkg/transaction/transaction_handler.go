package transaction

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/category"
	"github.com/uangsakti/uangsakti/pkg/media"
)

const dateLayout = "2006-01-02"
const maxProofSize = 10 << 20

type TransactionDTO struct {
	ID           string          `json:"id"`
	CategoryID   string          `json:"categoryId,omitempty"`
	CategoryName string          `json:"categoryName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	ProofURL     string          `json:"proofUrl,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Handler struct {
	store    *Store
	uploader media.Uploader
}

func NewHandler(store *Store, uploader media.Uploader) *Handler {
	return &Handler{store: store, uploader: uploader}
}

// GetAll fetches the collection and applies the list filter from the query
// string: category, month, year, search, sort=asc|desc.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	transactions, err := h.store.FetchAll(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	filtered := Apply(transactions, filter)

	dtos := make([]TransactionDTO, 0, len(filtered))
	for _, t := range filtered {
		dtos = append(dtos, transactionToDTO(t))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating new transaction")

	draft, err := h.parseMutation(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	created, err := h.store.Add(r.Context(), draft)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(transactionToDTO(created)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	patch, err := h.parseMutation(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	previousProof := h.currentProofURL(r, id)

	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	if previousProof != "" && previousProof != updated.ProofURL {
		h.deleteProof(r, previousProof)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transactionToDTO(updated)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := h.store.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	if removed.ProofURL != "" {
		h.deleteProof(r, removed.ProofURL)
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseMutation accepts either a JSON body or a multipart form carrying an
// optional "proof" image. The image is uploaded to the media host first; if
// that fails, the mutation is aborted before the gateway is involved.
func (h *Handler) parseMutation(r *http.Request) (Transaction, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var dto TransactionDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			return Transaction{}, &rest.ValidationError{Field: "body", Message: "invalid request body format"}
		}
		return dtoToTransaction(dto)
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		return Transaction{}, &rest.ValidationError{Field: "body", Message: "invalid multipart form"}
	}

	dto := TransactionDTO{
		CategoryID:  r.FormValue("categoryId"),
		Kind:        r.FormValue("kind"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		ProofURL:    r.FormValue("proofUrl"),
	}
	if amountValue := r.FormValue("amount"); amountValue != "" {
		amount, err := decimal.NewFromString(amountValue)
		if err != nil {
			return Transaction{}, &rest.ValidationError{Field: "amount", Message: "amount must be a number"}
		}
		dto.Amount = amount
	}

	draft, err := dtoToTransaction(dto)
	if err != nil {
		return Transaction{}, err
	}

	file, header, err := r.FormFile("proof")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, nil
	}
	if err != nil {
		return Transaction{}, &rest.ValidationError{Field: "proof", Message: "invalid proof file"}
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxProofSize))
	if err != nil {
		return Transaction{}, &rest.ValidationError{Field: "proof", Message: "could not read proof file"}
	}

	url, err := h.uploader.Upload(r.Context(), header.Filename, content)
	if err != nil {
		return Transaction{}, &rest.UploadError{Err: err}
	}
	draft.ProofURL = url
	return draft, nil
}

func (h *Handler) currentProofURL(r *http.Request, id string) string {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		return ""
	}
	for _, t := range snap.Items {
		if t.ID == id {
			return t.ProofURL
		}
	}
	return ""
}

func (h *Handler) deleteProof(r *http.Request, url string) {
	if err := h.uploader.Delete(r.Context(), url); err != nil && !errors.Is(err, media.ErrNotConfigured) {
		log.Warnf("failed to delete proof image %s: %v", url, err)
	}
}

func filterFromQuery(r *http.Request) (Filter, error) {
	query := r.URL.Query()
	filter := Filter{
		Category:      query.Get("category"),
		Search:        query.Get("search"),
		DateAscending: query.Get("sort") == "asc",
	}
	if monthValue := query.Get("month"); monthValue != "" {
		month, err := strconv.Atoi(monthValue)
		if err != nil || month < 1 || month > 12 {
			return Filter{}, &rest.ValidationError{Field: "month", Message: "month must be between 1 and 12"}
		}
		filter.Month = month
	}
	if yearValue := query.Get("year"); yearValue != "" {
		year, err := strconv.Atoi(yearValue)
		if err != nil || year <= 0 {
			return Filter{}, &rest.ValidationError{Field: "year", Message: "year must be a positive number"}
		}
		filter.Year = year
	}
	return filter, nil
}

func transactionToDTO(t Transaction) TransactionDTO {
	return TransactionDTO{
		ID:           t.ID,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Amount:       t.Amount,
		Kind:         string(t.Kind),
		Description:  t.Description,
		Date:         t.Date.Format(dateLayout),
		ProofURL:     t.ProofURL,
		CreatedAt:    t.CreatedAt,
	}
}

func dtoToTransaction(dto TransactionDTO) (Transaction, error) {
	t := Transaction{
		ID:          dto.ID,
		CategoryID:  dto.CategoryID,
		Amount:      dto.Amount,
		Kind:        category.Kind(dto.Kind),
		Description: dto.Description,
		ProofURL:    dto.ProofURL,
	}
	if dto.Date != "" {
		date, err := time.Parse(dateLayout, dto.Date)
		if err != nil {
			return Transaction{}, &rest.ValidationError{Field: "date", Message: "date must be formatted as YYYY-MM-DD"}
		}
		t.Date = date
	}
	return t, nil
}
