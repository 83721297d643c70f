package configstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// ChangeRecord captures a single configuration mutation for the in-memory
// audit trail. Deletes record a nil NewValue.
type ChangeRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Key         string    `json:"key"`
	OldValue    any       `json:"old_value"`
	NewValue    any       `json:"new_value"`
	Source      Source    `json:"source"`
	User        string    `json:"user_id,omitempty"`
	Service     string    `json:"service,omitempty"`
	Environment string    `json:"environment,omitempty"`
}

// ListenerFunc receives (key, old, new) synchronously after each successful
// mutation. A panicking listener is recovered and logged; it never aborts
// the mutation or starves sibling listeners.
type ListenerFunc func(key string, oldValue, newValue any)

// History bounds: a log that has grown past historyHighWater records is cut
// back to the most recent historyKeep before it is read. This is a
// drop-oldest-half truncation, not a sliding window: the visible log
// oscillates between 500 and 1000 entries under sustained writes.
const (
	historyHighWater = 1000
	historyKeep      = 500
)

// auditor owns the change history and the listener registry. It has its own
// mutex, acquired only after the store's entry lock has been released.
type auditor struct {
	logger *logging.Logger

	mu        sync.Mutex
	history   []ChangeRecord
	listeners []ListenerFunc
}

func newAuditor(logger *logging.Logger) *auditor {
	return &auditor{logger: logger}
}

// newChangeID mirrors the short-uuid id style used for audit rows
// elsewhere in the stack.
func newChangeID() string {
	return "chg-" + uuid.NewString()[:8]
}

// record appends a change. The history bound is enforced by compact when
// the log is read, not on every write, so any reader arriving after a burst
// of writes sees exactly the most recent historyKeep records.
func (a *auditor) record(rec ChangeRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, rec)
}

// compact enforces the history bound. Caller must hold a.mu.
func (a *auditor) compact() {
	if len(a.history) > historyHighWater {
		kept := make([]ChangeRecord, historyKeep)
		copy(kept, a.history[len(a.history)-historyKeep:])
		a.history = kept
	}
}

// addListener registers a change listener.
func (a *auditor) addListener(fn ListenerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// notify invokes every registered listener with (key, old, new). Listeners
// run inline on the mutating goroutine against a snapshot of the registry,
// so registration during notification does not affect the current round.
func (a *auditor) notify(key string, oldValue, newValue any) {
	a.mu.Lock()
	listeners := make([]ListenerFunc, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, fn := range listeners {
		a.invoke(fn, key, oldValue, newValue)
	}
}

// invoke runs one listener, containing any panic.
func (a *auditor) invoke(fn ListenerFunc, key string, oldValue, newValue any) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("change listener panicked", "key", key, "panic", r)
		}
	}()
	fn(key, oldValue, newValue)
}

// tail returns up to limit most-recent records, newest last. limit <= 0
// returns the whole history.
func (a *auditor) tail(limit int) []ChangeRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.compact()

	n := len(a.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ChangeRecord, n)
	copy(out, a.history[len(a.history)-n:])
	return out
}

// counts reports listener and history sizes for status aggregation.
func (a *auditor) counts() (listeners, history int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.compact()
	return len(a.listeners), len(a.history)
}
