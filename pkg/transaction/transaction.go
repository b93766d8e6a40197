package transaction

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uangsakti/uangsakti/internal/rest"
	"github.com/uangsakti/uangsakti/pkg/category"
)

// Uncategorized is the display name for transactions whose category
// reference is absent or dangling (the category was deleted).
const Uncategorized = "Uncategorized"

type Transaction struct {
	ID         string
	CategoryID string
	// CategoryName is resolved by the gateway's join. Empty when the
	// reference is absent or dangling.
	CategoryName string
	Amount       decimal.Decimal
	Kind         category.Kind
	Description  string
	Date         time.Time
	ProofURL     string
	CreatedAt    time.Time
}

// ResolvedCategory follows the joined name, falling back to Uncategorized.
func (t Transaction) ResolvedCategory() string {
	if t.CategoryName == "" {
		return Uncategorized
	}
	return t.CategoryName
}

func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return &rest.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if !t.Kind.Valid() {
		return &rest.ValidationError{Field: "kind", Message: "kind must be income or expense"}
	}
	if t.Date.IsZero() {
		return &rest.ValidationError{Field: "date", Message: "date is required"}
	}
	return nil
}
