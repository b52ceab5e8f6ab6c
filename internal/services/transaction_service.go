package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/log"
)

// DefaultCategory is used when a transaction is logged without one.
const DefaultCategory = "other"

// TransactionLedger is the slice of the Ledger Store the transaction flow uses.
type TransactionLedger interface {
	ledger.BudgetReader
	ledger.TransactionStore
}

// TransactionInput is the raw user input of the transaction logging flow.
type TransactionInput struct {
	BudgetID int64  `validate:"gt=0"`
	Type     string `validate:"required"`
	Amount   string `validate:"required"`
	Category string `validate:"max=40"`
	Title    string `validate:"max=80"`
	// Date defaults to the creation time when zero.
	Date time.Time
}

type TransactionService struct {
	store    TransactionLedger
	recorder ActivityRecorder
	now      func() time.Time
}

// NewTransactionService creates the service. recorder may be nil.
func NewTransactionService(store TransactionLedger, recorder ActivityRecorder) *TransactionService {
	return &TransactionService{store: store, recorder: recorder, now: time.Now}
}

// AddTransaction logs an expense or income against an existing budget. The
// budget amount itself is left untouched; spending is always derived.
func (s *TransactionService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := validateInput(in); err != nil {
		return core.Transaction{}, err
	}
	txType, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", err, in.Type)
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: amount %q", err, in.Amount)
	}

	b, err := s.store.GetBudget(ctx, in.BudgetID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get budget %d: %w", in.BudgetID, err)
	}

	now := s.now()
	t := core.Transaction{
		BudgetID:  b.ID,
		Type:      txType,
		Amount:    amount,
		Category:  in.Category,
		Title:     in.Title,
		Date:      in.Date,
		CreatedAt: now,
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if t.Date.IsZero() {
		t.Date = now
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction added",
		log.FieldOperation, log.OpCreate,
		"transaction_id", id,
		log.FieldBudgetID, b.ID,
		log.FieldTxType, t.Type)
	record(ctx, s.recorder, t.Activity(), fmt.Sprintf("Added %s of %s to %s",
		strings.ToLower(string(t.Type)), core.FormatAmount(t.Amount), b.Title))
	return t, nil
}

// ListTransactions returns a budget's transactions, newest first. An empty
// typ lists every type.
func (s *TransactionService) ListTransactions(ctx context.Context, budgetID int64, typ string) ([]core.Transaction, error) {
	var filter *core.TransactionType
	if strings.TrimSpace(typ) != "" {
		t, err := core.ParseTransactionType(typ)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, typ)
		}
		filter = &t
	}
	txs, err := s.store.ListTransactions(ctx, budgetID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions for budget %d: %w", budgetID, err)
	}
	return txs, nil
}
