package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

// Store holds the ordered transaction history of one ledger.
// It is safe for concurrent use. Store does not enforce the overdraft
// policy; Service does.
type Store struct {
	mu           sync.RWMutex
	transactions []model.Transaction
	now          func() time.Time
	newID        func() string
}

// NewStore creates a Store seeded with previously persisted transactions.
// IDs and timestamps of the history are kept as-is.
func NewStore(history ...model.Transaction) *Store {
	txns := make([]model.Transaction, len(history))
	copy(txns, history)
	return &Store{
		transactions: txns,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        id.New,
	}
}

// All returns every transaction in insertion order.
func (s *Store) All() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Len returns the number of transactions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// GetBalance folds the full history into income, outcome and total.
func (s *Store) GetBalance() model.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeBalance(s.transactions)
}

// Create appends a new transaction and returns it.
func (s *Store) Create(title string, value decimal.Decimal, typ model.TransactionType) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(title, value, typ)
}

// Update runs fn while holding the store's write lock, so a balance read
// and the append that depends on it cannot interleave with other writers.
// fn must not call methods on the Store itself.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

func (s *Store) createLocked(title string, value decimal.Decimal, typ model.TransactionType) model.Transaction {
	ts := s.now()
	txn := model.Transaction{
		ID:        s.newID(),
		Title:     title,
		Value:     value,
		Type:      typ,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.transactions = append(s.transactions, txn)
	return txn
}

// Tx is the view of a Store handed to Update callbacks.
type Tx struct {
	s *Store
}

// GetBalance is Store.GetBalance without taking the lock.
func (tx *Tx) GetBalance() model.Balance {
	return ComputeBalance(tx.s.transactions)
}

// Create is Store.Create without taking the lock.
func (tx *Tx) Create(title string, value decimal.Decimal, typ model.TransactionType) model.Transaction {
	return tx.s.createLocked(title, value, typ)
}

// ComputeBalance sums values per type. Unknown types are ignored.
func ComputeBalance(txns []model.Transaction) model.Balance {
	income := decimal.Zero
	outcome := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case model.TypeIncome:
			income = income.Add(t.Value)
		case model.TypeOutcome:
			outcome = outcome.Add(t.Value)
		}
	}
	return model.Balance{
		Income:  income,
		Outcome: outcome,
		Total:   income.Sub(outcome),
	}
}
