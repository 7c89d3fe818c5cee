package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// ChaseParser parses Chase checking account CSV exports. Columns are
// located by header name; the Details column decides the direction.
type ChaseParser struct{}

const chaseDateFormat = "01/02/2006"

var chaseColumns = []string{"Details", "Posting Date", "Description", "Amount"}

// chaseKinds maps the Details column onto ledger types. DSLIP is a deposit slip.
var chaseKinds = map[string]model.TransactionType{
	"CREDIT": model.TypeIncome,
	"DSLIP":  model.TypeIncome,
	"DEBIT":  model.TypeOutcome,
	"CHECK":  model.TypeOutcome,
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns its rows in file order. Every row is
// validated, so a DEBIT with a positive amount is an error, not income.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols, err := chaseColumnIndex(records[0])
	if err != nil {
		return nil, err
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := cols.parse(rec)
		if err == nil {
			err = txn.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

type chaseIndex map[string]int

func chaseColumnIndex(header []string) (chaseIndex, error) {
	idx := make(chaseIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range chaseColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("chase CSV: missing column %q", name)
		}
	}
	return idx, nil
}

func (c chaseIndex) field(rec []string, name string) string {
	return strings.TrimSpace(rec[c[name]])
}

func (c chaseIndex) parse(rec []string) (model.BankTransaction, error) {
	details := strings.ToUpper(c.field(rec, "Details"))
	kind, ok := chaseKinds[details]
	if !ok {
		return model.BankTransaction{}, fmt.Errorf("unknown details %q", details)
	}

	date, err := time.Parse(chaseDateFormat, c.field(rec, "Posting Date"))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date: %w", err)
	}

	amount, err := decimal.NewFromString(c.field(rec, "Amount"))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount: %w", err)
	}

	return model.BankTransaction{
		Date:        date,
		Description: c.field(rec, "Description"),
		Amount:      amount,
		Kind:        kind,
	}, nil
}
