package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank CSV row.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // signed as exported: negative = money out
	Kind        TransactionType // direction reported by the bank
}

// Validate checks that the row can become a ledger record: it needs a
// description, a known kind, and an amount whose sign agrees with the kind.
// Zero amounts carry no direction and pass.
func (b BankTransaction) Validate() error {
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("empty description")
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	if b.Kind == TypeIncome && b.Amount.IsNegative() {
		return fmt.Errorf("income %q has negative amount %s", b.Description, b.Amount)
	}
	if b.Kind == TypeOutcome && b.Amount.IsPositive() {
		return fmt.Errorf("outcome %q has positive amount %s", b.Description, b.Amount)
	}
	return nil
}
