package engine

import "sync"

// Ledger tracks which confirmations were already recorded, keyed by
// (calendar date, confirmation id). Once a key is marked it is never
// resubmitted within the same date. The ledger is cleared on logout and on
// a new login.
type Ledger struct {
	mu   sync.Mutex
	done map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{done: make(map[string]struct{})}
}

func ledgerKey(date, confirmationID string) string {
	return date + "_" + confirmationID
}

// Mark records a confirmation as done for the given date.
func (l *Ledger) Mark(date, confirmationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[ledgerKey(date, confirmationID)] = struct{}{}
}

// Contains reports whether the confirmation was already recorded for the date.
func (l *Ledger) Contains(date, confirmationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[ledgerKey(date, confirmationID)]
	return ok
}

// Clear drops all recorded keys.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = make(map[string]struct{})
}

// Len returns the number of recorded keys.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}
