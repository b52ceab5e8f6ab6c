package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly     Duration = "weekly"
	Monthly    Duration = "monthly"
	NoDuration Duration = ""

	Expense TransactionType = "Expense"
	Income  TransactionType = "Income"

	ActivityBudget  ActivityType = "budget"
	ActivityExpense ActivityType = "expense"
	ActivityIncome  ActivityType = "income"
	ActivityBadge   ActivityType = "badge"
	ActivityProfile ActivityType = "profile"
)

type (
	// Duration is the spending period after which a budget is reset.
	Duration string

	TransactionType string

	ActivityType string

	Budget struct {
		ID             int64
		Title          string
		Amount         decimal.Decimal
		OriginalAmount decimal.NullDecimal // restored on reset
		ThemeColor     string
		ContentColor   string
		Duration       Duration
		LastReset      *time.Time
	}

	Transaction struct {
		ID        int64
		BudgetID  int64
		Type      TransactionType
		Amount    decimal.Decimal
		Category  string
		Title     string // empty when the user gave none
		Date      time.Time
		CreatedAt time.Time
	}

	// User is the single settings row of an installation.
	User struct {
		Name      string
		Currency  string
		Onboarded bool
	}

	ActivityLogEntry struct {
		ID        string       `json:"id"`
		Type      ActivityType `json:"type"`
		Message   string       `json:"message"`
		Timestamp time.Time    `json:"timestamp"`
	}
)

const DefaultCurrency = "USD"

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyTitle             = errors.New("empty title")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrMissingLastReset       = errors.New("budget with a duration has no last reset")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidBudgetID        = errors.New("invalid budget id")
	ErrInvalidActivityType    = errors.New("invalid activity type")
)

func (d Duration) IsValid() bool {
	switch d {
	case Weekly, Monthly, NoDuration:
		return true
	default:
		return false
	}
}

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityBudget, ActivityExpense, ActivityIncome, ActivityBadge, ActivityProfile:
		return true
	default:
		return false
	}
}

// ParseTransactionType accepts the type case-insensitively ("expense", "INCOME").
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	default:
		return "", ErrInvalidTransactionType
	}
}

// HasPeriod reports whether the budget takes part in automatic resets.
func (b Budget) HasPeriod() bool {
	return b.Duration != NoDuration && b.LastReset != nil
}

// ResetAmount is the amount a budget returns to when its period elapses.
func (b Budget) ResetAmount() decimal.Decimal {
	if b.OriginalAmount.Valid {
		return b.OriginalAmount.Decimal
	}
	return decimal.Zero
}

func (b Budget) Validate() error {
	if len(strings.TrimSpace(b.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(b.Title) > 80 {
		return errors.New("title too long (max 80 characters)")
	}
	if !b.Duration.IsValid() {
		return ErrInvalidDuration
	}
	if b.Duration != NoDuration && b.LastReset == nil {
		return ErrMissingLastReset
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.BudgetID <= 0 {
		return ErrInvalidBudgetID
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Activity returns the activity log type matching the transaction type.
func (t Transaction) Activity() ActivityType {
	if t.Type == Income {
		return ActivityIncome
	}
	return ActivityExpense
}

// DefaultUser is returned while no user row exists yet.
func DefaultUser() User {
	return User{Currency: DefaultCurrency}
}
