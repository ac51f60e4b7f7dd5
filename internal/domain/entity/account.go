package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a single named balance owned by exactly one user. Balances are
// signed; debts carry a negative balance.
type Account struct {
	ID        string
	UserID    string
	Name      string
	Category  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
