package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Budget is a row of the budgets table.
type Budget struct {
	ID             int64
	Title          string
	Amount         string
	OriginalAmount sql.NullString
	ThemeColor     string
	ContentColor   string
	Duration       sql.NullString
	LastReset      sql.NullString
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID        int64
	BudgetID  int64
	Type      string
	Amount    string
	Category  string
	Title     sql.NullString
	Date      string
	CreatedAt string
}

type User struct {
	Name      string
	Currency  string
	Onboarded bool
}

const budgetColumns = `id, title, amount, original_amount, theme_color, content_color, duration, last_reset`

func scanBudget(row interface{ Scan(...any) error }) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Title, &b.Amount, &b.OriginalAmount, &b.ThemeColor, &b.ContentColor, &b.Duration, &b.LastReset)
	return b, err
}

const listBudgets = `SELECT ` + budgetColumns + ` FROM budgets ORDER BY id`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const getBudget = `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ?`

func (q *Queries) GetBudget(ctx context.Context, id int64) (Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
}

const createBudget = `INSERT INTO budgets (title, amount, original_amount, theme_color, content_color, duration, last_reset)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateBudgetParams struct {
	Title          string
	Amount         string
	OriginalAmount sql.NullString
	ThemeColor     string
	ContentColor   string
	Duration       sql.NullString
	LastReset      sql.NullString
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createBudget,
		arg.Title, arg.Amount, arg.OriginalAmount, arg.ThemeColor, arg.ContentColor, arg.Duration, arg.LastReset,
	).Scan(&id)
	return id, err
}

const updateBudget = `UPDATE budgets
SET title = ?, amount = ?, original_amount = ?, theme_color = ?, content_color = ?, duration = ?, last_reset = ?
WHERE id = ?`

type UpdateBudgetParams struct {
	CreateBudgetParams
	ID int64
}

func (q *Queries) UpdateBudget(ctx context.Context, arg UpdateBudgetParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudget,
		arg.Title, arg.Amount, arg.OriginalAmount, arg.ThemeColor, arg.ContentColor, arg.Duration, arg.LastReset, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const resetBudgetAmount = `UPDATE budgets SET amount = ?, last_reset = ? WHERE id = ?`

func (q *Queries) ResetBudgetAmount(ctx context.Context, amount, lastReset string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, resetBudgetAmount, amount, lastReset, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudget, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const budgetExists = `SELECT EXISTS (SELECT 1 FROM budgets WHERE id = ?)`

func (q *Queries) BudgetExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, budgetExists, id).Scan(&exists)
	return exists, err
}

const createTransaction = `INSERT INTO transactions (budget_id, type, amount, category, title, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateTransactionParams struct {
	BudgetID  int64
	Type      string
	Amount    string
	Category  string
	Title     sql.NullString
	Date      string
	CreatedAt string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTransaction,
		arg.BudgetID, arg.Type, arg.Amount, arg.Category, arg.Title, arg.Date, arg.CreatedAt,
	).Scan(&id)
	return id, err
}

const listTransactions = `SELECT id, budget_id, type, amount, category, title, date, created_at
FROM transactions
WHERE budget_id = ?1 AND (?2 = '' OR type = ?2)
ORDER BY date DESC, id DESC`

// ListTransactions filters by type unless txType is empty.
func (q *Queries) ListTransactions(ctx context.Context, budgetID int64, txType string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, budgetID, txType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.BudgetID, &t.Type, &t.Amount, &t.Category, &t.Title, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const listTransactionAmounts = `SELECT amount FROM transactions WHERE budget_id = ? AND type = ?`

func (q *Queries) ListTransactionAmounts(ctx context.Context, budgetID int64, txType string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionAmounts, budgetID, txType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return nil, err
		}
		items = append(items, amount)
	}
	return items, rows.Err()
}

const deleteTransactionsByType = `DELETE FROM transactions WHERE budget_id = ? AND type = ?`

func (q *Queries) DeleteTransactionsByType(ctx context.Context, budgetID int64, txType string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransactionsByType, budgetID, txType)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransactionsByBudget = `DELETE FROM transactions WHERE budget_id = ?`

func (q *Queries) DeleteTransactionsByBudget(ctx context.Context, budgetID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransactionsByBudget, budgetID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getUser = `SELECT name, currency, onboarded FROM users WHERE id = 1`

func (q *Queries) GetUser(ctx context.Context) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser).Scan(&u.Name, &u.Currency, &u.Onboarded)
	return u, err
}

const upsertUser = `INSERT INTO users (id, name, currency, onboarded) VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name, currency = excluded.currency, onboarded = excluded.onboarded`

func (q *Queries) UpsertUser(ctx context.Context, u User) error {
	_, err := q.db.ExecContext(ctx, upsertUser, u.Name, u.Currency, u.Onboarded)
	return err
}
