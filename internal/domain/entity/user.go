package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the aggregate root of the bookkeeping domain. NetWorth and
// AccountList are denormalized from the user's Account rows and must only be
// written inside the same store transaction as the account change that moved
// them.
type User struct {
	ID              string
	Name            string
	Email           string
	Password        string // bcrypt hash
	Age             int
	AgeToRetire     int
	TargetWorth     decimal.Decimal
	WorthDateTarget *time.Time
	DrawDownAmount  decimal.Decimal
	MonthlyIncrease decimal.Decimal
	Currency        string
	FirstTimeUser   bool
	NetWorth        decimal.Decimal
	AccountList     []string
	LastUpdated     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
