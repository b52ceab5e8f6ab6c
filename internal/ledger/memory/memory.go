// Package memory is an in-process Ledger Store used by tests and the memory backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	nextID  int64
	budgets map[int64]core.Budget
	txs     map[int64]core.Transaction
	user    *core.User

	// Fail, when set, is consulted before every operation; a non-nil result is
	// returned instead of touching the data.
	Fail func(op string, id int64) error
}

var _ ledger.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{
		budgets: make(map[int64]core.Budget),
		txs:     make(map[int64]core.Transaction),
	}
}

func (s *Store) fail(op string, id int64) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, id)
}

// cloneBudget detaches LastReset so neither the caller nor the store can
// change the other's copy through the shared pointer.
func cloneBudget(b core.Budget) core.Budget {
	if b.LastReset != nil {
		t := *b.LastReset
		b.LastReset = &t
	}
	return b
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListBudgets", 0); err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, cloneBudget(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetBudget", id); err != nil {
		return core.Budget{}, err
	}
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, ledger.ErrBudgetNotFound
	}
	return cloneBudget(b), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateBudget", 0); err != nil {
		return 0, err
	}
	b.ID = s.id()
	s.budgets[b.ID] = cloneBudget(b)
	return b.ID, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateBudget", b.ID); err != nil {
		return err
	}
	if _, ok := s.budgets[b.ID]; !ok {
		return ledger.ErrBudgetNotFound
	}
	s.budgets[b.ID] = cloneBudget(b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteBudget", id); err != nil {
		return err
	}
	if _, ok := s.budgets[id]; !ok {
		return ledger.ErrBudgetNotFound
	}
	delete(s.budgets, id)
	for txID, t := range s.txs {
		if t.BudgetID == id {
			delete(s.txs, txID)
		}
	}
	return nil
}

func (s *Store) ResetBudget(_ context.Context, id int64, amount decimal.Decimal, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ResetBudget", id); err != nil {
		return err
	}
	b, ok := s.budgets[id]
	if !ok {
		return ledger.ErrBudgetNotFound
	}
	b.Amount = amount
	b.LastReset = &now
	s.budgets[id] = b
	s.deleteByTypeLocked(id, core.Expense)
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateTransaction", t.BudgetID); err != nil {
		return 0, err
	}
	if _, ok := s.budgets[t.BudgetID]; !ok {
		return 0, ledger.ErrBudgetNotFound
	}
	t.ID = s.id()
	s.txs[t.ID] = t
	return t.ID, nil
}

func (s *Store) ListTransactions(_ context.Context, budgetID int64, txType *core.TransactionType) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListTransactions", budgetID); err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, t := range s.txs {
		if t.BudgetID != budgetID {
			continue
		}
		if txType != nil && t.Type != *txType {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) DeleteTransactionsByType(_ context.Context, budgetID int64, txType core.TransactionType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteTransactionsByType", budgetID); err != nil {
		return 0, err
	}
	return s.deleteByTypeLocked(budgetID, txType), nil
}

func (s *Store) deleteByTypeLocked(budgetID int64, txType core.TransactionType) int64 {
	var n int64
	for id, t := range s.txs {
		if t.BudgetID == budgetID && t.Type == txType {
			delete(s.txs, id)
			n++
		}
	}
	return n
}

func (s *Store) SumTransactions(_ context.Context, budgetID int64, txType core.TransactionType) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SumTransactions", budgetID); err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range s.txs {
		if t.BudgetID == budgetID && t.Type == txType {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (s *Store) GetUser(_ context.Context) (core.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUser", 0); err != nil {
		return core.User{}, false, err
	}
	if s.user == nil {
		return core.DefaultUser(), false, nil
	}
	return *s.user, true, nil
}

func (s *Store) SaveUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveUser", 0); err != nil {
		return err
	}
	s.user = &u
	return nil
}
