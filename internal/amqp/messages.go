package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventBudgetReset   = "budget.reset"
	EventBudgetDeleted = "budget.deleted"
)

// LedgerEvent announces a ledger change to whoever listens on the exchange.
// Amounts travel as decimal strings.
type LedgerEvent struct {
	Type      string    `json:"type"`
	BudgetID  int64     `json:"budget_id"`
	Title     string    `json:"title"`
	Amount    string    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetResetEvent creates the event emitted after a budget period reset.
func NewBudgetResetEvent(budgetID int64, title, amount string, at time.Time) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventBudgetReset,
		BudgetID:  budgetID,
		Title:     title,
		Amount:    amount,
		Timestamp: at,
	}
}

func NewBudgetDeletedEvent(budgetID int64, title string) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventBudgetDeleted,
		BudgetID:  budgetID,
		Title:     title,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by PublishLedgerEvent.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
