// Package ledger declares the Ledger Store ports the services depend on.
// Adapters live in internal/storage (SQLite) and internal/ledger/memory.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pocketbudget/internal/core"
)

var ErrBudgetNotFound = errors.New("budget not found")

// Ports for outbound adapters.
type (
	BudgetReader interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		GetBudget(ctx context.Context, id int64) (core.Budget, error)
	}

	BudgetWriter interface {
		CreateBudget(ctx context.Context, b core.Budget) (int64, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		// DeleteBudget removes the budget together with all of its transactions.
		DeleteBudget(ctx context.Context, id int64) error
	}

	// BudgetResetter restores a budget's amount, moves its last reset to now and
	// drops its Expense transactions as a single atomic unit.
	BudgetResetter interface {
		ResetBudget(ctx context.Context, id int64, amount decimal.Decimal, now time.Time) error
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
		// ListTransactions returns the budget's transactions, newest date first.
		// A nil txType lists every type.
		ListTransactions(ctx context.Context, budgetID int64, txType *core.TransactionType) ([]core.Transaction, error)
		DeleteTransactionsByType(ctx context.Context, budgetID int64, txType core.TransactionType) (int64, error)
		// SumTransactions returns zero when the budget has no matching rows.
		SumTransactions(ctx context.Context, budgetID int64, txType core.TransactionType) (decimal.Decimal, error)
	}

	// UserStore holds the singleton settings row. GetUser reports ok=false
	// while onboarding has never written it.
	UserStore interface {
		GetUser(ctx context.Context) (user core.User, ok bool, err error)
		SaveUser(ctx context.Context, u core.User) error
	}

	Ledger interface {
		BudgetReader
		BudgetWriter
		BudgetResetter
		TransactionStore
		UserStore
	}
)
