package log

// Field names shared by every component.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldBudgetID  = "budget_id"
	FieldTitle     = "title"
	FieldAmount    = "amount"
	FieldPeriod    = "duration"
	FieldTxType    = "type"
	FieldStreak    = "streak"
	FieldBackend   = "backend"
)

// Component names.
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentReset    = "reset"
	ComponentActivity = "activity"
	ComponentStreak   = "streak"
	ComponentBackend  = "backend"
)

// Operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReset    = "reset"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields builds key/value pairs for slog calls.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBudget adds the identifying fields of a budget.
func (f LogFields) WithBudget(id int64, title string) LogFields {
	f[FieldBudgetID] = id
	f[FieldTitle] = title
	return f
}

func (f LogFields) WithDurationMs(ms int64) LogFields {
	f[FieldDuration] = ms
	return f
}

// ToSlice flattens the fields into slog's alternating key/value form.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
