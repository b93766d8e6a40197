package budget

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uangsakti/uangsakti/internal/rest"
)

// Budget is a spending ceiling for one category in one calendar month.
// Duplicates on (category, month, year) are allowed and tracked
// independently.
type Budget struct {
	ID         string
	CategoryID string
	Amount     decimal.Decimal
	Month      int
	Year       int
	CreatedAt  time.Time
}

func (b Budget) Validate() error {
	if b.CategoryID == "" {
		return &rest.ValidationError{Field: "categoryId", Message: "category is required"}
	}
	if !b.Amount.IsPositive() {
		return &rest.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if b.Month < 1 || b.Month > 12 {
		return &rest.ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	if b.Year <= 0 {
		return &rest.ValidationError{Field: "year", Message: "year must be a positive number"}
	}
	return nil
}
