package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/log"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so persisted timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const dsnPragmas = "?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Ledger = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool touches the schema
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a single SQL transaction.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListBudgets implements ledger.BudgetReader
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	budgets := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := budgetFromRow(row)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// GetBudget implements ledger.BudgetReader
func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ledger.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return budgetFromRow(row)
}

// CreateBudget implements ledger.BudgetWriter
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateBudget(ctx, budgetParams(b))
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}

	fields := log.NewFields().
		WithComponent(log.ComponentStorage).
		WithOperation(log.OpCreate).
		WithBudget(id, b.Title)
	slog.InfoContext(ctx, "Budget saved to SQLite", append(fields.ToSlice(),
		log.FieldAmount, b.Amount.String(),
		log.FieldPeriod, b.Duration)...)

	return id, nil
}

// UpdateBudget implements ledger.BudgetWriter
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateBudget(ctx, UpdateBudgetParams{CreateBudgetParams: budgetParams(b), ID: b.ID})
	if err != nil {
		return fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	if n == 0 {
		return ledger.ErrBudgetNotFound
	}
	return nil
}

// DeleteBudget implements ledger.BudgetWriter. Transactions are removed in the
// same SQL transaction so the cascade does not depend on the foreign_keys pragma.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	var removed int64
	err := r.withTx(ctx, func(q *Queries) error {
		var err error
		removed, err = q.DeleteTransactionsByBudget(ctx, id)
		if err != nil {
			return fmt.Errorf("delete transactions of budget %d: %w", id, err)
		}
		n, err := q.DeleteBudget(ctx, id)
		if err != nil {
			return fmt.Errorf("delete budget %d: %w", id, err)
		}
		if n == 0 {
			return ledger.ErrBudgetNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpDelete,
		log.FieldBudgetID, id,
		"transactions_removed", removed)
	return nil
}

// ResetBudget implements ledger.BudgetResetter
func (r *SQLiteRepository) ResetBudget(ctx context.Context, id int64, amount decimal.Decimal, now time.Time) error {
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.ResetBudgetAmount(ctx, amount.String(), formatTime(now), id)
		if err != nil {
			return fmt.Errorf("update budget %d amount: %w", id, err)
		}
		if n == 0 {
			return ledger.ErrBudgetNotFound
		}
		if _, err := q.DeleteTransactionsByType(ctx, id, string(core.Expense)); err != nil {
			return fmt.Errorf("clear expenses of budget %d: %w", id, err)
		}
		return nil
	})
}

// CreateTransaction implements ledger.TransactionStore
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.withTx(ctx, func(q *Queries) error {
		exists, err := q.BudgetExists(ctx, t.BudgetID)
		if err != nil {
			return fmt.Errorf("check budget %d: %w", t.BudgetID, err)
		}
		if !exists {
			return ledger.ErrBudgetNotFound
		}
		id, err = q.CreateTransaction(ctx, CreateTransactionParams{
			BudgetID:  t.BudgetID,
			Type:      string(t.Type),
			Amount:    t.Amount.String(),
			Category:  t.Category,
			Title:     nullString(t.Title),
			Date:      formatTime(t.Date),
			CreatedAt: formatTime(t.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		"id", id,
		log.FieldBudgetID, t.BudgetID,
		log.FieldTxType, t.Type,
		log.FieldAmount, t.Amount.String(),
		"category", t.Category)

	return id, nil
}

// ListTransactions implements ledger.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context, budgetID int64, txType *core.TransactionType) ([]core.Transaction, error) {
	filter := ""
	if txType != nil {
		filter = string(*txType)
	}
	rows, err := r.queries.ListTransactions(ctx, budgetID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions of budget %d: %w", budgetID, err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// DeleteTransactionsByType implements ledger.TransactionStore
func (r *SQLiteRepository) DeleteTransactionsByType(ctx context.Context, budgetID int64, txType core.TransactionType) (int64, error) {
	n, err := r.queries.DeleteTransactionsByType(ctx, budgetID, string(txType))
	if err != nil {
		return 0, fmt.Errorf("delete %s transactions of budget %d: %w", txType, budgetID, err)
	}
	return n, nil
}

// SumTransactions implements ledger.TransactionStore. Amounts are stored as
// decimal text, so the sum is done here rather than with SQL SUM (which would
// go through floating point).
func (r *SQLiteRepository) SumTransactions(ctx context.Context, budgetID int64, txType core.TransactionType) (decimal.Decimal, error) {
	amounts, err := r.queries.ListTransactionAmounts(ctx, budgetID, string(txType))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s transactions of budget %d: %w", txType, budgetID, err)
	}
	sum := decimal.Zero
	for _, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", a, err)
		}
		sum = sum.Add(d)
	}
	return sum, nil
}

// GetUser implements ledger.UserStore
func (r *SQLiteRepository) GetUser(ctx context.Context) (core.User, bool, error) {
	row, err := r.queries.GetUser(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultUser(), false, nil
	}
	if err != nil {
		return core.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return core.User{Name: row.Name, Currency: row.Currency, Onboarded: row.Onboarded}, true, nil
}

// SaveUser implements ledger.UserStore
func (r *SQLiteRepository) SaveUser(ctx context.Context, u core.User) error {
	if err := r.queries.UpsertUser(ctx, User{Name: u.Name, Currency: u.Currency, Onboarded: u.Onboarded}); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	slog.InfoContext(ctx, "User profile saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpUpdate,
		"currency", u.Currency,
		"onboarded", u.Onboarded)
	return nil
}

func budgetParams(b core.Budget) CreateBudgetParams {
	p := CreateBudgetParams{
		Title:        b.Title,
		Amount:       b.Amount.String(),
		ThemeColor:   b.ThemeColor,
		ContentColor: b.ContentColor,
		Duration:     nullString(string(b.Duration)),
	}
	if b.OriginalAmount.Valid {
		p.OriginalAmount = nullString(b.OriginalAmount.Decimal.String())
	}
	if b.LastReset != nil {
		p.LastReset = nullString(formatTime(*b.LastReset))
	}
	return p
}

func budgetFromRow(row Budget) (core.Budget, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse amount of budget %d: %w", row.ID, err)
	}
	b := core.Budget{
		ID:           row.ID,
		Title:        row.Title,
		Amount:       amount,
		ThemeColor:   row.ThemeColor,
		ContentColor: row.ContentColor,
		Duration:     core.Duration(row.Duration.String),
	}
	if row.OriginalAmount.Valid {
		original, err := decimal.NewFromString(row.OriginalAmount.String)
		if err != nil {
			return core.Budget{}, fmt.Errorf("parse original amount of budget %d: %w", row.ID, err)
		}
		b.OriginalAmount = decimal.NewNullDecimal(original)
	}
	if row.LastReset.Valid {
		ts, err := parseTime(row.LastReset.String)
		if err != nil {
			return core.Budget{}, fmt.Errorf("parse last reset of budget %d: %w", row.ID, err)
		}
		b.LastReset = &ts
	}
	return b, nil
}

func transactionFromRow(row Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of transaction %d: %w", row.ID, err)
	}
	date, err := parseTime(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date of transaction %d: %w", row.ID, err)
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at of transaction %d: %w", row.ID, err)
	}
	return core.Transaction{
		ID:        row.ID,
		BudgetID:  row.BudgetID,
		Type:      core.TransactionType(row.Type),
		Amount:    amount,
		Category:  row.Category,
		Title:     row.Title.String,
		Date:      date,
		CreatedAt: createdAt,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
