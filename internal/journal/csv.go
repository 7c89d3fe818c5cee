package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

// Header is the CSV header for the journal file.
const Header = "id,title,value,type,created_at,updated_at"

const (
	numFields    = 6
	colID        = 0
	colTitle     = 1
	colValue     = 2
	colType      = 3
	colCreatedAt = 4
	colUpdatedAt = 5
)

// ReadTransactions reads all transactions from a journal CSV reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("row 1: expected header %q, got %q", Header, got)
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a journal CSV writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions writes transactions without a header.
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colTitle] = txn.Title
	row[colValue] = txn.Value.String()
	row[colType] = string(txn.Type)
	row[colCreatedAt] = txn.CreatedAt.UTC().Format(time.RFC3339Nano)
	row[colUpdatedAt] = txn.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if err := id.Validate(record[colID]); err != nil {
		return model.Transaction{}, err
	}

	if strings.TrimSpace(record[colTitle]) == "" {
		return model.Transaction{}, fmt.Errorf("transaction %s has an empty title", record[colID])
	}

	value, err := decimal.NewFromString(record[colValue])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing value %q: %w", record[colValue], err)
	}
	if !value.IsPositive() {
		return model.Transaction{}, fmt.Errorf("value %q must be positive", record[colValue])
	}

	typ := model.TransactionType(record[colType])
	if !typ.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown transaction type %q", record[colType])
	}

	createdAt, err := time.Parse(time.RFC3339Nano, record[colCreatedAt])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, record[colUpdatedAt])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing updated_at %q: %w", record[colUpdatedAt], err)
	}

	return model.Transaction{
		ID:        record[colID],
		Title:     record[colTitle],
		Value:     value,
		Type:      typ,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
