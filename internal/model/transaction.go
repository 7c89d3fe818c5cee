package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a transaction as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeOutcome TransactionType = "outcome"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeOutcome:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string { return string(t) }

// Transaction is a single ledger record. It is never modified after creation.
type Transaction struct {
	ID        string
	Title     string
	Value     decimal.Decimal
	Type      TransactionType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Balance is derived from the full transaction history.
type Balance struct {
	Income  decimal.Decimal
	Outcome decimal.Decimal
	Total   decimal.Decimal
}

// Equal reports whether both balances hold the same amounts.
func (b Balance) Equal(other Balance) bool {
	return b.Income.Equal(other.Income) &&
		b.Outcome.Equal(other.Outcome) &&
		b.Total.Equal(other.Total)
}
