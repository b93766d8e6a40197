package category

import (
	"time"

	"github.com/uangsakti/uangsakti/internal/rest"
)

// Kind splits categories (and the transactions referencing them) into the
// two sides of the ledger.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

type Category struct {
	ID        string
	Name      string
	Kind      Kind
	CreatedAt time.Time
}

func (c Category) Validate() error {
	if c.Name == "" {
		return &rest.ValidationError{Field: "name", Message: "name is required"}
	}
	if !c.Kind.Valid() {
		return &rest.ValidationError{Field: "kind", Message: "kind must be income or expense"}
	}
	return nil
}
