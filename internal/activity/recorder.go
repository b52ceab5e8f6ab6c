// Package activity records the human-readable trail of user actions.
//
// The log is kept in memory newest first and written through, as a JSON array,
// to the persisted key-value cache after every append. It is independent of the
// ledger: a ledger write and its log entry are never part of one transaction.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocketbudget/internal/core"
	"pocketbudget/internal/kvstore"
	"pocketbudget/internal/log"
)

// StorageKey is the key-value cache key holding the serialized log.
const StorageKey = "activity_logs"

// DayGroup holds the entries of one local calendar day, newest first.
type DayGroup struct {
	Date    string // YYYY-MM-DD
	Entries []core.ActivityLogEntry
}

type Recorder struct {
	mu         sync.Mutex
	store      kvstore.Store
	entries    []core.ActivityLogEntry
	maxEntries int

	now   func() time.Time
	newID func() string
}

// NewRecorder loads the persisted log from store. maxEntries caps the log;
// zero or less keeps every entry.
func NewRecorder(ctx context.Context, store kvstore.Store, maxEntries int) (*Recorder, error) {
	r := &Recorder{
		store:      store,
		maxEntries: maxEntries,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Load replaces the in-memory log with the persisted one. A corrupt payload is
// logged and treated as an empty log; it is overwritten by the next Append.
func (r *Recorder) Load(ctx context.Context) error {
	raw, ok, err := r.store.GetItem(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load activity log: %w", err)
	}

	var entries []core.ActivityLogEntry
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			slog.WarnContext(ctx, "Discarding unreadable activity log",
				log.FieldComponent, log.ComponentActivity,
				log.FieldError, err,
				"bytes", len(raw))
			entries = nil
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Append prepends a new entry and persists the whole log. If persisting fails
// the entry is dropped again so memory and storage stay in step.
func (r *Recorder) Append(ctx context.Context, typ core.ActivityType, message string) (core.ActivityLogEntry, error) {
	if !typ.IsValid() {
		return core.ActivityLogEntry{}, fmt.Errorf("%w: %q", core.ErrInvalidActivityType, typ)
	}

	entry := core.ActivityLogEntry{
		ID:        r.newID(),
		Type:      typ,
		Message:   message,
		Timestamp: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]core.ActivityLogEntry, 0, len(r.entries)+1)
	next = append(next, entry)
	next = append(next, r.entries...)
	if r.maxEntries > 0 && len(next) > r.maxEntries {
		next = next[:r.maxEntries]
	}

	data, err := json.Marshal(next)
	if err != nil {
		return core.ActivityLogEntry{}, fmt.Errorf("marshal activity log: %w", err)
	}
	if err := r.store.SetItem(ctx, StorageKey, string(data)); err != nil {
		return core.ActivityLogEntry{}, fmt.Errorf("persist activity log: %w", err)
	}
	r.entries = next

	slog.DebugContext(ctx, "Activity recorded",
		log.FieldComponent, log.ComponentActivity,
		log.FieldTxType, typ,
		"entries", len(next))
	return entry, nil
}

// Entries returns a copy of the log, newest first.
func (r *Recorder) Entries() []core.ActivityLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.ActivityLogEntry(nil), r.entries...)
}

// ListGroupedByDay groups entries by their calendar day in loc. Groups are
// ordered newest day first and keep the log order inside each group.
func (r *Recorder) ListGroupedByDay(loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	return GroupByDay(r.Entries(), loc)
}

// GroupByDay is the grouping used by ListGroupedByDay.
func GroupByDay(entries []core.ActivityLogEntry, loc *time.Location) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, e := range entries {
		day := core.CalendarDate(e.Timestamp.In(loc))
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}
