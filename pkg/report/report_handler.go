package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/budget"
)

const defaultSummaryMonths = 6

type OverviewDTO struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetSavings    decimal.Decimal `json:"netSavings"`
}

type CategorySliceDTO struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type SummaryRowDTO struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate float64         `json:"savingsRate"`
}

type ConsumptionDTO struct {
	Spent      decimal.Decimal `json:"spent"`
	Percentage float64         `json:"percentage"`
	OverBudget bool            `json:"overBudget"`
}

type Handler struct {
	service  Service
	renderer Renderer
}

func NewHandler(service Service, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	overview, err := h.service.Overview(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(OverviewDTO(overview)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	breakdown, err := h.service.Breakdown(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	dtos := make([]CategorySliceDTO, 0, len(breakdown))
	for _, slice := range breakdown {
		dtos = append(dtos, CategorySliceDTO(slice))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// Monthly serves the monthly summary. months=N limits the window to the
// trailing N months; months=all covers the whole history.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	months, err := monthsFromQuery(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rows, err := h.service.Summary(r.Context(), months)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	dtos := make([]SummaryRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, summaryRowToDTO(row))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) MonthlyCsv(w http.ResponseWriter, r *http.Request) {
	months, err := monthsFromQuery(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rows, err := h.service.Summary(r.Context(), months)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	csv, err := h.renderer.RenderSummary(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

func (h *Handler) BudgetConsumption(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	consumption, err := h.service.BudgetConsumption(r.Context(), id)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "Budget not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ConsumptionDTO(consumption)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func monthsFromQuery(r *http.Request) (int, error) {
	value := r.URL.Query().Get("months")
	if value == "" {
		return defaultSummaryMonths, nil
	}
	if value == "all" {
		return 0, nil
	}
	months, err := strconv.Atoi(value)
	if err != nil || months < 1 {
		return 0, &rest.ValidationError{Field: "months", Message: "months must be a positive number or \"all\""}
	}
	return months, nil
}

func summaryRowToDTO(row SummaryRow) SummaryRowDTO {
	return SummaryRowDTO{
		Year:        row.Year,
		Month:       int(row.Month),
		Income:      row.Income,
		Expenses:    row.Expenses,
		Savings:     row.Savings,
		SavingsRate: row.SavingsRate,
	}
}
