package services

import (
	"context"
	"log/slog"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/log"
)

// ActivityRecorder receives the human-readable trail of mutations.
// *activity.Recorder satisfies it.
type ActivityRecorder interface {
	Append(ctx context.Context, typ core.ActivityType, message string) (core.ActivityLogEntry, error)
}

// EventPublisher announces ledger changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// record appends an activity entry when a recorder is configured. The log is
// independent of the ledger, so a failure here never fails the mutation.
func record(ctx context.Context, r ActivityRecorder, typ core.ActivityType, message string) {
	if r == nil {
		return
	}
	if _, err := r.Append(ctx, typ, message); err != nil {
		slog.ErrorContext(ctx, "Failed to record activity",
			log.FieldComponent, log.ComponentActivity,
			log.FieldTxType, typ,
			log.FieldError, err)
	}
}

// publish sends ev when a publisher is configured, logging failures.
func publish(ctx context.Context, p EventPublisher, ev *amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.PublishLedgerEvent(ctx, ev); err != nil {
		fields := log.NewFields().
			WithComponent(log.ComponentAMQP).
			WithOperation(log.OpPublish).
			WithBudget(ev.BudgetID, ev.Title).
			WithError(err)
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			append(fields.ToSlice(), log.FieldTxType, ev.Type)...)
	}
}
