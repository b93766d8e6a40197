package goal

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uangsakti/uangsakti/internal/rest"
)

// Goal is a savings target. CurrentAmount only ever grows through AddFunds
// and never exceeds TargetAmount.
type Goal struct {
	ID            string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CreatedAt     time.Time
}

// Progress is CurrentAmount as a percentage of TargetAmount, 0 when the
// target is 0.
func (g Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	return g.CurrentAmount.Div(g.TargetAmount).InexactFloat64() * 100
}

// Achieved reports whether the goal is fully funded.
func (g Goal) Achieved() bool {
	return g.Progress() >= 100
}

func (g Goal) Validate() error {
	if g.Name == "" {
		return &rest.ValidationError{Field: "name", Message: "name is required"}
	}
	if !g.TargetAmount.IsPositive() {
		return &rest.ValidationError{Field: "targetAmount", Message: "target amount must be positive"}
	}
	if g.CurrentAmount.IsNegative() {
		return &rest.ValidationError{Field: "currentAmount", Message: "current amount cannot be negative"}
	}
	if g.CurrentAmount.GreaterThan(g.TargetAmount) {
		return &rest.ValidationError{Field: "currentAmount", Message: "current amount cannot exceed target amount"}
	}
	return nil
}
