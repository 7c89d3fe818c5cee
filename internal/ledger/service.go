package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
)

var (
	// ErrInvalidTransactionType is returned when a request's type is not income or outcome.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrInsufficientFunds is returned when an outcome exceeds the current total.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// CreateRequest holds the fields needed to create a transaction.
type CreateRequest struct {
	Title string
	Value decimal.Decimal
	Type  model.TransactionType
}

// Service is the entry point for creating transactions. It validates
// requests against the current balance before writing to the Store.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService creates a Service over store. A nil logger disables logging.
func NewService(store *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("ledger")}
}

// Execute validates req and, if it passes, appends it to the ledger.
// Income is always accepted; outcome is accepted while value <= total.
func (s *Service) Execute(req CreateRequest) (model.Transaction, error) {
	if !req.Type.Valid() {
		s.logger.Warn("rejected transaction",
			zap.String("title", req.Title),
			zap.String("type", string(req.Type)),
			zap.String("reason", ErrInvalidTransactionType.Error()),
		)
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, req.Type)
	}

	var created model.Transaction
	err := s.store.Update(func(tx *Tx) error {
		if req.Type == model.TypeOutcome {
			balance := tx.GetBalance()
			if req.Value.GreaterThan(balance.Total) {
				return fmt.Errorf("%w: value %s exceeds balance %s",
					ErrInsufficientFunds, req.Value.String(), balance.Total.String())
			}
		}
		created = tx.Create(req.Title, req.Value, req.Type)
		return nil
	})
	if err != nil {
		s.logger.Warn("rejected transaction",
			zap.String("title", req.Title),
			zap.String("type", string(req.Type)),
			zap.String("value", req.Value.String()),
			zap.Error(err),
		)
		return model.Transaction{}, err
	}

	s.logger.Info("created transaction",
		zap.String("id", created.ID),
		zap.String("title", created.Title),
		zap.String("type", string(created.Type)),
		zap.String("value", created.Value.String()),
	)
	return created, nil
}

// List returns every transaction in insertion order.
func (s *Service) List() []model.Transaction {
	return s.store.All()
}

// Balance returns the current balance.
func (s *Service) Balance() model.Balance {
	return s.store.GetBalance()
}
